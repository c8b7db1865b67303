package roll

import (
	"context"
	"fmt"
	"strings"
)

// Addiction is the staged addiction-test flow: pick the drug, say how long
// since the last dose, then roll the required test or tests. Prompts stay
// ephemeral; rolled tests and the "no test needed" outcome go to the campaign
// webhook so the table sees them.
type Addiction struct {
	env     Env
	req     Request
	payload *addictionPayload
}

// NewAddiction builds the flow from a bare "/roll addiction" or an echoed
// stage payload.
func NewAddiction(env Env, req Request) (*Addiction, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	a := &Addiction{env: env, req: req}
	if len(req.Args) > 0 && strings.HasPrefix(req.Args[0], "{") {
		p, err := decodeAddictionPayload(strings.Join(req.Args, " "))
		if err != nil {
			return nil, err
		}
		a.payload = &p
	}
	return a, nil
}

// Execute advances the flow one stage.
func (a *Addiction) Execute(ctx context.Context) (Result, error) {
	if a.payload == nil {
		return a.chooseDrug(), nil
	}
	drug, ok := drugByID(a.payload.Drug)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown drug %q", ErrInvalidArguments, a.payload.Drug)
	}
	switch a.payload.Stage {
	case addictionStageWeeks:
		return a.chooseWeeks(drug), nil
	case addictionStageTest:
		return a.promptForTest(ctx, drug)
	case addictionStageRoll:
		return a.rollTest(ctx, drug)
	default:
		return Result{}, fmt.Errorf("%w: unknown addiction stage %q", ErrInvalidArguments, a.payload.Stage)
	}
}

func (a *Addiction) chooseDrug() Result {
	opts := make([]Option, 0, len(drugCatalog))
	for _, d := range drugCatalog {
		opts = append(opts, Option{
			Label: d.Name,
			Value: encodePayload(addictionPayload{
				V:     payloadVersion,
				Stage: addictionStageWeeks,
				Drug:  d.ID,
			}),
		})
	}
	return Result{
		Text:       "What drug did you take?",
		CallbackID: a.req.Character.Handle,
		Selects: []SelectAction{{
			Name:    "addiction",
			Label:   "Pick a drug...",
			Options: opts,
		}},
	}
}

// chooseWeeks asks how long it has been since the last dose. Each clean week
// lowers the threshold by one, so offering more weeks than the threshold is
// pointless.
func (a *Addiction) chooseWeeks(drug Drug) Result {
	weeks := func(n int) string {
		return encodePayload(addictionPayload{
			V:     payloadVersion,
			Stage: addictionStageTest,
			Drug:  drug.ID,
			Weeks: n,
		})
	}
	opts := []Option{{Label: "I just took some more", Value: weeks(0)}}
	cadence := drug.TestWeeks()
	for i := 1; i < min(cadence, drug.Threshold); i++ {
		label := fmt.Sprintf("%d weeks", i)
		if i == 1 {
			label = "1 week"
		}
		opts = append(opts, Option{Label: label, Value: weeks(i)})
	}
	if cadence > drug.Threshold {
		opts = append(opts, Option{
			Label: fmt.Sprintf("%d or more weeks", drug.Threshold),
			Value: weeks(drug.Threshold),
		})
	}
	return Result{
		Text: fmt.Sprintf(
			"For %s, you need to roll an addiction test every %d weeks. How long has it been since you've used?",
			drug.Name, cadence),
		CallbackID: a.req.Character.Handle,
		Selects: []SelectAction{{
			Name:    "addiction",
			Label:   "How long...",
			Options: opts,
		}},
	}
}

// promptForTest publishes either the "no test needed" card or the roll
// buttons, then deletes the ephemeral prompt.
func (a *Addiction) promptForTest(ctx context.Context, drug Drug) (Result, error) {
	threshold := drug.Threshold - a.payload.Weeks
	var public Result
	if threshold <= 0 {
		public = Result{
			Color: ColorGood,
			Title: fmt.Sprintf("%s avoided addiction!", a.req.Character.Handle),
			Text: fmt.Sprintf(
				"Enough time has passed since they used that they don't need to make a roll to avoid addiction to %s.",
				drug.Name),
		}
	} else {
		plural := ""
		if drug.Type == DrugBoth {
			plural = "s"
		}
		public = Result{
			Text:       fmt.Sprintf("Roll your addiction test%s.", plural),
			CallbackID: a.req.Character.Handle,
			Actions:    a.testButtons(drug, false),
		}
	}
	if err := a.publish(ctx, public); err != nil {
		return Result{}, err
	}
	return Result{ReplaceOriginal: true, DeleteOriginal: true}, nil
}

// rollTest runs one of the two test kinds as a standard pool roll and
// publishes it. A drug that needs both kinds re-prompts for the other.
func (a *Addiction) rollTest(ctx context.Context, drug Drug) (Result, error) {
	c := a.req.Character
	pool := c.Willpower
	kind := "psychological"
	switch a.payload.Kind {
	case "psy":
		pool += c.Logic
	case "phys":
		pool += c.Body
		kind = "physiological"
	default:
		return Result{}, fmt.Errorf("%w: unknown test kind %q", ErrInvalidArguments, a.payload.Kind)
	}

	title := fmt.Sprintf("%s addiction test versus threshold %d (%s)",
		drug.Name, drug.Threshold-a.payload.Weeks, kind)
	res, err := Run(ctx, a.env, newFixedPool(a.env, a.req, pool, title))
	if err != nil {
		return Result{}, err
	}
	if err := a.publish(ctx, res); err != nil {
		return Result{}, err
	}

	if drug.Type != DrugBoth || a.payload.Final {
		return Result{ReplaceOriginal: true, DeleteOriginal: true}, nil
	}

	// The other kind is still owed; swap the prompt in place.
	return Result{
		Text:       "Roll the other addiction test.",
		CallbackID: c.Handle,
		Actions:    a.remainingButton(drug, kind),
	}, nil
}

// testButtons offers a button per required test kind.
func (a *Addiction) testButtons(drug Drug, final bool) []Action {
	value := func(kind string) string {
		return encodePayload(addictionPayload{
			V:     payloadVersion,
			Stage: addictionStageRoll,
			Drug:  drug.ID,
			Weeks: a.payload.Weeks,
			Kind:  kind,
			Final: final,
		})
	}
	var actions []Action
	if drug.Psychological() {
		actions = append(actions, Action{Name: "addiction", Label: "Psychological", Value: value("psy")})
	}
	if drug.Physiological() {
		actions = append(actions, Action{Name: "addiction", Label: "Physiological", Value: value("phys")})
	}
	return actions
}

// remainingButton offers the one test kind not yet rolled.
func (a *Addiction) remainingButton(drug Drug, rolled string) []Action {
	value := func(kind string) string {
		return encodePayload(addictionPayload{
			V:     payloadVersion,
			Stage: addictionStageRoll,
			Drug:  drug.ID,
			Weeks: a.payload.Weeks,
			Kind:  kind,
			Final: true,
		})
	}
	if rolled == "psychological" {
		return []Action{{Name: "addiction", Label: "Physiological", Value: value("phys")}}
	}
	return []Action{{Name: "addiction", Label: "Psychological", Value: value("psy")}}
}

func (a *Addiction) publish(ctx context.Context, res Result) error {
	camp, err := a.env.Campaigns.GetCampaign(ctx, a.req.CampaignID)
	if err != nil {
		return err
	}
	return a.env.Webhook.Post(ctx, camp.WebhookURL, res)
}
