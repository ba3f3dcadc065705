package gateway

import (
	"duelserver/internal/duel"
	"duelserver/internal/net/proto"
	"duelserver/internal/ruleserr"
)

// gameIntentFunc maps a decoded in-match ClientIntent to the duel.Match
// method it invokes, closing over the submitting player's seat. Intents
// that return data beyond a bare error (view-top-deck) are handled
// separately by handleGameIntent since Actor.Submit only propagates an
// error.
func gameIntentFunc(seat int, in proto.ClientIntent) (func(m *duel.Match) error, error) {
	switch in.Type {
	case proto.IntentPlayCharacter:
		return func(m *duel.Match) error { return m.PlayCharacter(seat, in.InstanceID) }, nil
	case proto.IntentPlayEvent:
		return func(m *duel.Match) error { return m.PlayEvent(seat, in.InstanceID) }, nil
	case proto.IntentPlayStage:
		return func(m *duel.Match) error { return m.PlayStage(seat, in.InstanceID) }, nil
	case proto.IntentAttachDON:
		return func(m *duel.Match) error { return m.AttachDONIntent(seat, in.TargetID, in.Amount) }, nil
	case proto.IntentDetachDON:
		return func(m *duel.Match) error { return m.DetachDON(seat, in.TargetID, in.Amount) }, nil
	case proto.IntentActivateMain:
		return func(m *duel.Match) error { return m.ActivateMain(seat, in.InstanceID) }, nil
	case proto.IntentEndTurn:
		return func(m *duel.Match) error { return m.EndTurn(seat) }, nil

	case proto.IntentDeclareAttack:
		return func(m *duel.Match) error { return m.DeclareAttack(seat, in.InstanceID, in.TargetID) }, nil
	case proto.IntentDeclareBlocker:
		return func(m *duel.Match) error { return m.DeclareBlocker(seat, in.InstanceID) }, nil
	case proto.IntentSkipBlocker:
		return func(m *duel.Match) error { return m.SkipBlocker(seat) }, nil
	case proto.IntentStageCounter:
		return func(m *duel.Match) error { return m.StageCounter(seat, in.InstanceID) }, nil
	case proto.IntentUnstageCounter:
		return func(m *duel.Match) error { return m.UnstageCounter(seat, in.InstanceID) }, nil
	case proto.IntentConfirmCounter:
		return func(m *duel.Match) error { return m.ConfirmCounter(seat) }, nil
	case proto.IntentAddManualCounterPower:
		return func(m *duel.Match) error { return m.AddManualCounterPower(seat, in.Amount) }, nil
	case proto.IntentSkipCounter:
		return func(m *duel.Match) error { return m.SkipCounter(seat) }, nil

	case proto.IntentResolvePendingEffect:
		return func(m *duel.Match) error { return m.ResolvePendingEffect(seat, in.Selected) }, nil
	case proto.IntentSkipPendingEffect:
		return func(m *duel.Match) error { return m.SkipPendingEffect(seat) }, nil
	case proto.IntentRespondTrigger:
		return func(m *duel.Match) error { return m.RespondTrigger(seat, in.Activate) }, nil

	case proto.IntentKOTarget:
		return func(m *duel.Match) error { return m.KOTarget(seat, in.InstanceID) }, nil
	case proto.IntentBounceToHand:
		return func(m *duel.Match) error { return m.BounceFieldToHand(seat, in.InstanceID) }, nil
	case proto.IntentBounceToBottom:
		return func(m *duel.Match) error { return m.BounceToBottom(seat, in.InstanceID) }, nil
	case proto.IntentPlayFromTrash:
		return func(m *duel.Match) error { return m.PlayFromTrash(seat, in.InstanceID) }, nil
	case proto.IntentModifyPower:
		return func(m *duel.Match) error { return m.ModifyPowerManual(seat, in.InstanceID, in.Amount) }, nil
	case proto.IntentTrashFromHand:
		return func(m *duel.Match) error { return m.TrashFromHand(seat, in.InstanceID) }, nil
	case proto.IntentRestTarget:
		return func(m *duel.Match) error { return m.RestTarget(seat, in.InstanceID) }, nil
	case proto.IntentActivateTarget:
		return func(m *duel.Match) error { return m.ActivateTarget(seat, in.InstanceID) }, nil
	case proto.IntentMoveDON:
		return func(m *duel.Match) error { return m.MoveDON(seat, in.Amount, in.ToRested) }, nil
	case proto.IntentLifeToHand:
		return func(m *duel.Match) error { return m.LifeToHandManual(seat, in.Amount) }, nil
	case proto.IntentTrashToLife:
		return func(m *duel.Match) error { return m.TrashToLife(seat, in.InstanceID) }, nil

	default:
		return nil, ruleserr.Protocol(ruleserr.CodeUnknownIntent, "unknown intent: "+in.Type)
	}
}
