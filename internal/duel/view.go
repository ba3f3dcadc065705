package duel

// View is a per-player rendering of Match state: everything the viewer is
// entitled to see, with the opponent's hidden zones reduced to counts.
//
// Grounded on the teacher's MarshalState split between full and patch
// payloads (internal/state and hub.go), generalized here to "full vs
// opponent-redacted" instead of "full vs delta".
type View struct {
	RoomID             string      `json:"roomId"`
	Phase              Phase       `json:"phase"`
	TurnNumber         int         `json:"turnNumber"`
	CurrentPlayerIndex int         `json:"currentPlayerIndex"`
	BattleStep         BattleStep  `json:"battleStep"`
	Winner             *int        `json:"winner,omitempty"`
	You                int         `json:"you"`
	Players            [2]SideView `json:"players"`
	PendingAttack      *AttackView `json:"pendingAttack,omitempty"`
	StagedCounters     []string    `json:"stagedCounters,omitempty"`
	PendingEffect      *PendingView `json:"pendingEffect,omitempty"`
	PendingTrigger     *TriggerView `json:"pendingTrigger,omitempty"`
	ActionLog          []string    `json:"actionLog"`
}

// SlotView renders one occupied field position.
type SlotView struct {
	InstanceID  string `json:"instanceId"`
	CardNumber  string `json:"cardNumber"`
	Power       int    `json:"power"`
	AttachedDON int    `json:"attachedDon"`
	Rested      bool   `json:"rested"`
}

// SideView renders one player's board. Hand is only populated with card
// identities for the viewer's own side; the opponent's hand, and Deck and
// Life on both sides, are reduced to counts so a client can never learn
// hidden information.
type SideView struct {
	DisplayName string     `json:"displayName"`
	Leader      *SlotView  `json:"leader,omitempty"`
	Characters  []SlotView `json:"characters"`
	Stage       *SlotView  `json:"stage,omitempty"`
	Trash       []string   `json:"trash"`

	Hand      []string `json:"hand,omitempty"`
	HandCount int      `json:"handCount"`
	DeckCount int      `json:"deckCount"`
	LifeCount int      `json:"lifeCount"`

	DONActive int `json:"donActive"`
	DONRested int `json:"donRested"`
	DONDeck   int `json:"donDeck"`
}

// AttackView renders the currently declared attack, if any.
type AttackView struct {
	AttackerPlayer   int    `json:"attackerPlayer"`
	AttackerInstance string `json:"attackerInstance,omitempty"`
	TargetPlayer     int    `json:"targetPlayer"`
	TargetInstance   string `json:"targetInstance,omitempty"`
	AttackerPower    int    `json:"attackerPower"`
	TargetPower      int    `json:"targetPower"`
}

// PendingView renders an open PendingEffect for the owner only; other
// viewers see only that one is outstanding.
type PendingView struct {
	Kind       PendingEffectKind `json:"kind"`
	Owner      int               `json:"owner"`
	Candidates []string          `json:"candidates,omitempty"`
	MinSelect  int               `json:"minSelect"`
	MaxSelect  int               `json:"maxSelect"`
	Optional   bool              `json:"optional"`
	Message    string            `json:"message,omitempty"`
}

// TriggerView renders an open life-reveal TRIGGER decision.
type TriggerView struct {
	Owner      int    `json:"owner"`
	CardNumber string `json:"cardNumber"`
}

func slotView(m *Match, s *Slot) *SlotView {
	if s == nil || s.Instance == nil {
		return nil
	}
	return &SlotView{
		InstanceID:  s.Instance.InstanceID,
		CardNumber:  s.Instance.CardNumber,
		Power:       m.computePower(s.Instance.InstanceID),
		AttachedDON: s.AttachedDON,
		Rested:      s.Rested,
	}
}

func instanceNumbers(list []*CardInstance) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.CardNumber)
	}
	return out
}

func instanceIDs(list []*CardInstance) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.InstanceID)
	}
	return out
}

// ViewFor renders the match from viewer's perspective (0 or 1).
func (m *Match) ViewFor(viewer int) View {
	v := View{
		RoomID:             m.RoomID,
		Phase:              m.Phase,
		TurnNumber:         m.TurnNumber,
		CurrentPlayerIndex: m.CurrentPlayerIndex,
		BattleStep:         m.BattleStep,
		Winner:             m.Winner,
		You:                viewer,
		ActionLog:          m.ActionLog,
	}

	for idx, ps := range m.Players {
		side := SideView{
			DisplayName: ps.DisplayName,
			Leader:      slotView(m, &ps.Leader),
			Stage:       slotView(m, ps.Stage),
			Trash:       instanceNumbers(ps.Trash),
			HandCount:   len(ps.Hand),
			DeckCount:   len(ps.Deck),
			LifeCount:   len(ps.Life),
			DONActive:   ps.DONActive,
			DONRested:   ps.DONRested,
			DONDeck:     ps.DONDeck,
		}
		for _, s := range ps.Characters {
			if sv := slotView(m, s); sv != nil {
				side.Characters = append(side.Characters, *sv)
			}
		}
		if idx == viewer {
			side.Hand = instanceNumbers(ps.Hand)
		}
		v.Players[idx] = side
	}

	if m.PendingAttack != nil {
		pa := m.PendingAttack
		v.PendingAttack = &AttackView{
			AttackerPlayer:   pa.AttackerPlayer,
			AttackerInstance: pa.AttackerInstance,
			TargetPlayer:     pa.TargetPlayer,
			TargetInstance:   pa.TargetInstance,
			AttackerPower:    pa.AttackerPower,
			TargetPower:      pa.TargetPower,
		}
		if pa.BlockerInstance != "" {
			v.PendingAttack.TargetInstance = pa.BlockerInstance
		}
	}
	for _, sc := range m.StagedCounters {
		if sc.Card != nil {
			v.StagedCounters = append(v.StagedCounters, sc.Card.InstanceID)
		}
	}

	if m.PendingEffect != nil {
		pe := m.PendingEffect
		pv := &PendingView{Kind: pe.Kind, Owner: pe.Owner, MinSelect: pe.MinSelect, MaxSelect: pe.MaxSelect, Optional: pe.Optional, Message: pe.Message}
		if pe.Owner == viewer {
			pv.Candidates = pe.Candidates
		}
		v.PendingEffect = pv
	}
	if m.PendingTrigger != nil {
		v.PendingTrigger = &TriggerView{Owner: m.PendingTrigger.Owner, CardNumber: m.PendingTrigger.CardNumber}
	}

	return v
}
