package combat

// SetHealth overwrites both health values without evaluating the winner.
func (e *Engine) SetHealth(player, monster int) {
	e.state.PlayerHealth = player
	e.state.MonsterHealth = monster
}
