package roll

import "context"

// Help renders the static command list.
type Help struct{}

// NewHelp builds the help command.
func NewHelp(env Env, req Request) (*Help, error) {
	return &Help{}, nil
}

// Execute returns the command reference card.
func (h *Help) Execute(ctx context.Context) (Result, error) {
	return Result{
		Title: "RollBot allows you to roll Shadowrun 5E dice",
		Fields: []Field{
			{
				Title: "Rolling Dice",
				Value: "`help` - Show help\n" +
					"`6 [text]` - Roll 6 dice, with optional text (automatics, perception, etc)\n" +
					"`12 6 [text]` - Roll 12 dice with a limit of 6\n" +
					"`XdY[+-M] [text]` - Roll X dice with Y pips, adding or subtracting M from the total",
			},
			{
				Title: "Initiative Rolls",
				Value: "`init` - Roll your initiative normally\n" +
					"`show` - Show current initiative status\n" +
					"`blitz` - Use Edge to Blitz and roll 5 dice",
			},
			{
				Title: "Combat Rolls",
				Value: "`soak {AP=0}` - Roll your soak (body, armor, qualities, magic) with optional armor penetration",
			},
			{
				Title: "Magic Rolls",
				Value: "`cast` - Start dialog to cast a spell\n" +
					"`drain {spellId} {force} {hits} {reckless?}` - Try to resist drain",
			},
			{
				Title: "Attribute-Only Tests",
				Value: "`composure` - Composure: Roll Charisma + Willpower\n" +
					"`lifting` - Lift/Carry: Roll Body + Strength\n" +
					"`judge` - Judge Intentions: Roll Charisma + Intuition\n" +
					"`memory` - Memory: Roll Logic + Willpower\n" +
					"`luck` - Luck: Roll Edge",
			},
			{
				Title: "Edge Effects",
				Value: "`push 15 [6] [text]` - Push the limit, roll dice pool + edge, with exploding 6's, manually add your edge\n" +
					"`second` - Second Chance: Re-roll your last roll's failures",
			},
			{
				Title: "Misc Commands",
				Value: "`campaign` - Return information about the campaign\n" +
					"`stats` - Show my character's stat block\n" +
					"`market [index]` - Negotiate a pending black market search\n" +
					"`cancelmarket` - Cancel your open black market search\n" +
					"`addiction` - Start a dialog for avoiding addiction",
			},
		},
	}, nil
}
