package config

const (
	ModuleInformation = "🕯️ Information"
	ModuleUtilities   = "📢 Utilities"
	ModuleSettings    = "⚙️ Settings"
	ModuleMaintenance = "🛠️ Maintenance"
)

// ModuleWeights orders command modules in help output.
var ModuleWeights = map[string]int{
	ModuleInformation: 0,
	ModuleUtilities:   10,
	ModuleSettings:    50,
	ModuleMaintenance: 60,
}

// ModuleWeight returns the sort weight of a module; unknown modules sort last.
func ModuleWeight(module string) int {
	if w, ok := ModuleWeights[module]; ok {
		return w
	}
	return 1000
}
