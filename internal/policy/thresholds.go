package policy

// GetThreshold returns the numeric parameter configured for a rule under
// rules.<ID>.params.<key>, or defaultValue when no override is present.
// Rules read their tunables through this accessor via RuleContext.Policy
// (e.g. K8S_POD_RUN_AS_ROOT's "min_run_as_uid" floor). Safe to call with
// cfg == nil: no policy file loaded means every rule runs on its defaults.
func GetThreshold(ruleID, key string, defaultValue float64, cfg *PolicyConfig) float64 {
	if cfg == nil {
		return defaultValue
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok {
		return defaultValue
	}
	v, ok := rc.Params[key]
	if !ok {
		return defaultValue
	}
	return v
}
