package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/monsterslayer/internal/frontend/telnet"
	"github.com/cory-johannsen/monsterslayer/internal/game/bestiary"
	"github.com/cory-johannsen/monsterslayer/internal/game/combat"
	"github.com/cory-johannsen/monsterslayer/internal/game/command"
	"github.com/cory-johannsen/monsterslayer/internal/game/history"
)

// barCells is the number of character cells in a rendered health bar.
const barCells = 20

// RenderHealthBar draws a bar for width, a percentage in [0, 100].
//
// Postcondition: The stripped result is exactly barCells characters.
func RenderHealthBar(width int) string {
	width = min(max(width, 0), 100)
	filled := width * barCells / 100
	color := telnet.BrightGreen
	switch {
	case width <= 25:
		color = telnet.BrightRed
	case width <= 50:
		color = telnet.BrightYellow
	}
	return telnet.Colorize(color, strings.Repeat("█", filled)) +
		telnet.Colorize(telnet.Dim, strings.Repeat("░", barCells-filled))
}

// RenderStatus formats both health bars and the round line.
func RenderStatus(snap combat.Snapshot, m *bestiary.Monster) []string {
	special := telnet.Colorize(telnet.BrightGreen, "ready")
	if !snap.CanUseSpecial {
		special = telnet.Colorize(telnet.Dim, "recharging")
	}
	return []string{
		fmt.Sprintf("  %-14s %s %3d", m.Name, RenderHealthBar(snap.MonsterBar), snap.MonsterBar),
		fmt.Sprintf("  %-14s %s %3d", "You", RenderHealthBar(snap.PlayerBar), snap.PlayerBar),
		fmt.Sprintf("  Round %d. Special attack %s.", snap.Round, special),
	}
}

// RenderLogEntry formats one battle log entry from the player's point of view.
func RenderLogEntry(e combat.LogEntry, m *bestiary.Monster) string {
	switch {
	case e.Actor == combat.SideMonster:
		return telnet.Colorf(telnet.Red, "%s %s you for %d damage.", m.Name, m.AttackVerb, e.Magnitude)
	case e.Kind == combat.ActionAttack:
		return telnet.Colorf(telnet.Green, "You strike %s for %d damage.", m.Name, e.Magnitude)
	case e.Kind == combat.ActionSpecialAttack:
		return telnet.Colorf(telnet.Magenta, "You unleash a special attack on %s for %d damage!", m.Name, e.Magnitude)
	case e.Kind == combat.ActionHeal:
		return telnet.Colorf(telnet.Cyan, "You heal yourself for %d.", e.Magnitude)
	default:
		return telnet.Colorize(telnet.Yellow, "You throw down your weapon and surrender.")
	}
}

// RenderLog formats the whole battle log, newest entry first.
func RenderLog(log []combat.LogEntry, m *bestiary.Monster) []string {
	if len(log) == 0 {
		return []string{telnet.Colorize(telnet.Dim, "Nothing has happened yet.")}
	}
	lines := make([]string, 0, len(log)+1)
	lines = append(lines, telnet.Colorize(telnet.BrightWhite, "Battle log (newest first):"))
	for _, e := range log {
		lines = append(lines, fmt.Sprintf("  %s %s",
			RenderLogEntry(e, m),
			telnet.Colorf(telnet.Dim, "[you %d, %s %d]", e.PlayerHealth, m.Name, e.MonsterHealth)))
	}
	return lines
}

// RenderOutcome formats the banner for a declared winner.
func RenderOutcome(w combat.Winner, m *bestiary.Monster) string {
	switch w {
	case combat.WinnerPlayer:
		return telnet.Colorf(telnet.Bold+telnet.BrightGreen, "*** You have slain %s! ***", m.Name)
	case combat.WinnerMonster:
		return telnet.Colorf(telnet.Bold+telnet.BrightRed, "*** %s has defeated you. ***", m.Name)
	case combat.WinnerDraw:
		return telnet.Colorize(telnet.Bold+telnet.BrightYellow, "*** You fall together. It's a draw. ***")
	}
	return ""
}

// RenderIntro announces a new opponent.
func RenderIntro(m *bestiary.Monster) []string {
	lines := []string{telnet.Colorf(telnet.Bold+telnet.BrightYellow, "%s blocks your path!", m.Name)}
	if m.Description != "" {
		lines = append(lines, telnet.Colorize(telnet.Dim, m.Description))
	}
	return lines
}

// RenderHelp lists the commands in registration order.
func RenderHelp(cmds []*command.Command) []string {
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Commands:")}
	for _, c := range cmds {
		name := c.Name
		if len(c.Aliases) > 0 {
			name += " (" + strings.Join(c.Aliases, ", ") + ")"
		}
		lines = append(lines, fmt.Sprintf("  %s%-28s%s %s", telnet.BrightYellow, name, telnet.Reset, c.Help))
	}
	return lines
}

// RenderHistory formats archived battles, most recent first.
func RenderHistory(battles []history.Battle) []string {
	if len(battles) == 0 {
		return []string{telnet.Colorize(telnet.Dim, "No battles have been recorded yet.")}
	}
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Recent battles:")}
	for _, b := range battles {
		var outcome string
		switch b.Winner {
		case combat.WinnerPlayer:
			outcome = telnet.Colorize(telnet.Green, "victory")
		case combat.WinnerMonster:
			outcome = telnet.Colorize(telnet.Red, "defeat")
		default:
			outcome = telnet.Colorize(telnet.Yellow, "draw")
		}
		lines = append(lines, fmt.Sprintf("  %s  %-14s %s in %d rounds",
			b.EndedAt.Format("2006-01-02 15:04"), b.Monster, outcome, b.Rounds))
	}
	return lines
}

// RenderPrompt formats the input prompt.
func RenderPrompt(snap combat.Snapshot) string {
	if snap.Concluded() {
		return telnet.Colorize(telnet.BrightCyan, "[new/quit]> ")
	}
	return telnet.Colorf(telnet.BrightCyan, "[R%d %d/%d]> ", snap.Round+1, snap.PlayerBar, snap.MonsterBar)
}
