package models

// BotSettings holds admin-tunable economy parameters persisted under
// data/config/bot_settings.json.
type BotSettings struct {
	Version               string `json:"version"`
	DebugMode             bool   `json:"debug_mode"`
	StartingBalance       int64  `json:"starting_balance"`
	CriticalSuccessChance int    `json:"critical_success_chance"`
	CriticalMultiplierMin int    `json:"critical_multiplier_min"`
	CriticalMultiplierMax int    `json:"critical_multiplier_max"`
}

// DefaultBotSettings returns the settings applied when no file exists yet.
func DefaultBotSettings() *BotSettings {
	return &BotSettings{
		Version:               "1.0.0",
		StartingBalance:       50,
		CriticalSuccessChance: 2,
		CriticalMultiplierMin: 3,
		CriticalMultiplierMax: 5,
	}
}

// Clone returns a copy of the settings.
func (s *BotSettings) Clone() *BotSettings {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
