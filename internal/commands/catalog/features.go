package catalogcmd

// FeatureGates exposes runtime feature toggles required by catalog command
// handlers. Callers should supply closures that read from the runtime config
// so handlers stay decoupled from configuration while honouring flags.
type FeatureGates struct {
	LintEnabled      func() bool
	GeneratorEnabled func() bool
}

func (g FeatureGates) lintEnabled() bool {
	if g.LintEnabled == nil {
		return true
	}
	return g.LintEnabled()
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return true
	}
	return g.GeneratorEnabled()
}
