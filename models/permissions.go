package models

// Permission categories gating command groups per guild.
const (
	PermissionGeneral = "general"
	PermissionEconomy = "economy"
	PermissionAdmin   = "admin"
)

// PermissionCategories lists every known category.
var PermissionCategories = []string{PermissionGeneral, PermissionEconomy, PermissionAdmin}

// GuildPermissions records which command categories a guild may use.
type GuildPermissions struct {
	ServerName string          `json:"server_name"`
	Categories map[string]bool `json:"categories"`
}

// NewGuildPermissions returns a permission record with every category set
// to the given default.
func NewGuildPermissions(serverName string, enabled bool) *GuildPermissions {
	gp := &GuildPermissions{
		ServerName: serverName,
		Categories: make(map[string]bool, len(PermissionCategories)),
	}
	for _, c := range PermissionCategories {
		gp.Categories[c] = enabled
	}
	return gp
}

// Clone returns a deep copy.
func (g *GuildPermissions) Clone() *GuildPermissions {
	if g == nil {
		return nil
	}
	out := &GuildPermissions{
		ServerName: g.ServerName,
		Categories: make(map[string]bool, len(g.Categories)),
	}
	for k, v := range g.Categories {
		out.Categories[k] = v
	}
	return out
}
