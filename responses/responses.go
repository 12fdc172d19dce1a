package responses

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Built-in flavor lines. Placeholders use {name} syntax and are filled by
// Format. A JSON file of overrides can replace any of them at startup.
var defaults = map[string]string{
	"work":              "You worked a long shift and earned **{amount} Medals**.",
	"work_rare_success": "CRITICAL SUCCESS! Your {multiplier}x shift turned {original} into **{amount} Medals**!",
	"crime_success":     "You got away with it and pocketed **{amount} Medals**.",
	"injury":            "You got hurt and paid a **{amount} Medal** fine.",
	"death":             "You died with **{amount} Medals** in your pockets. The reaper collects.",
	"prison":            "The guards caught you. Welcome to hell.",
	"rob_success":       "You robbed {target} and made off with **{amount} Medals**!",
	"rob_injury":        "{target} fought back! You paid a **{amount} Medal** fine and limped away.",
	"rob_death":         "{target} was armed. You died with **{amount} Medals** on you.",
	"roulette_win":      "The wheel lands on **{color}**. You win **{amount} Medals**!",
	"roulette_loss":     "The wheel lands on **{color}**. Your bet is gone.",
	"heal_success":      "The mortician patched you up for **{amount} Medals**. Try not to come back.",
	"escape_success":    "You slipped past the {tier} and tasted freedom!",
	"escape_failure":    "The {tier} dragged you back to your cell.",
	"breakout_success":  "You broke {target} out from the {tier}!",
	"breakout_failure":  "The {tier} caught you. Enjoy your new cell.",
	"challenge_open":    "You've grown too rich. The house demands a game.",
	"challenge_win":     "You beat the house! **{amount} Medals** land in your savings.",
	"challenge_loss":    "The house always wins. Everyone pays for your greed.",
}

// Manager serves flavor lines, layering file-loaded overrides over the
// built-in defaults.
type Manager struct {
	mu        sync.RWMutex
	overrides map[string]string
}

// NewManager creates a manager serving the built-in lines.
func NewManager() *Manager {
	return &Manager{}
}

// Load replaces built-in lines with the contents of a JSON override file.
// A missing file is not an error.
func (m *Manager) Load(path string) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.WithField("error", err).Warn("Failed to read response overrides")
		return
	}

	loaded := make(map[string]string)
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.WithField("error", err).Warn("Failed to decode response overrides")
		return
	}

	m.mu.Lock()
	m.overrides = loaded
	m.mu.Unlock()
	log.WithField("count", len(loaded)).Info("Loaded response overrides")
}

// Format renders the flavor line for key, substituting {name} placeholders.
// Unknown keys come back as-is so a missing line never breaks a reply.
func (m *Manager) Format(key string, params map[string]string) string {
	m.mu.RLock()
	line, ok := m.overrides[key]
	m.mu.RUnlock()
	if !ok {
		if line, ok = defaults[key]; !ok {
			return key
		}
	}

	for name, value := range params {
		line = strings.ReplaceAll(line, "{"+name+"}", value)
	}
	return line
}
