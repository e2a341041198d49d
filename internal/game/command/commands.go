// Package command parses player input lines and maps them to battle commands.
package command

// Categories for organizing help output.
const (
	CategoryBattle = "battle"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers dispatched by the session handler.
const (
	HandlerAttack    = "attack"
	HandlerSpecial   = "special"
	HandlerHeal      = "heal"
	HandlerSurrender = "surrender"
	HandlerNew       = "new"
	HandlerStatus    = "status"
	HandlerLog       = "log"
	HandlerHistory   = "history"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help     string
	Category string
	// Handler selects the session action that runs the command.
	Handler string
}

// BuiltinCommands returns the commands available during a battle session.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "attack", Aliases: []string{"a"}, Help: "Strike the monster", Category: CategoryBattle, Handler: HandlerAttack},
		{Name: "special", Aliases: []string{"s"}, Help: "Heavy strike, unavailable every third round", Category: CategoryBattle, Handler: HandlerSpecial},
		{Name: "heal", Aliases: []string{"h"}, Help: "Restore some health", Category: CategoryBattle, Handler: HandlerHeal},
		{Name: "surrender", Aliases: []string{"give"}, Help: "Give up the battle", Category: CategoryBattle, Handler: HandlerSurrender},
		{Name: "new", Aliases: []string{"reset", "restart"}, Help: "Start a new battle, optionally against a monster by id", Category: CategoryBattle, Handler: HandlerNew},

		{Name: "status", Aliases: []string{"look"}, Help: "Show health and round", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "log", Help: "Show the battle log", Category: CategoryInfo, Handler: HandlerLog},
		{Name: "history", Help: "List recently finished battles", Category: CategoryInfo, Handler: HandlerHistory},

		{Name: "help", Aliases: []string{"?"}, Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
