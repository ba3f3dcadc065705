package duel

// findSlot returns the Slot and owning player index for instanceID,
// searching both players' Leader, Characters, and Stage. Cards not
// currently on the field (in hand/deck/trash/life) have no Slot.
func (m *Match) findSlot(instanceID string) (*Slot, int, bool) {
	for idx, p := range m.Players {
		if p.Leader.Instance != nil && p.Leader.Instance.InstanceID == instanceID {
			return &p.Leader, idx, true
		}
		for _, s := range p.Characters {
			if s.Instance != nil && s.Instance.InstanceID == instanceID {
				return s, idx, true
			}
		}
		if p.Stage != nil && p.Stage.Instance != nil && p.Stage.Instance.InstanceID == instanceID {
			return p.Stage, idx, true
		}
	}
	return nil, -1, false
}

// findInstance locates a CardInstance anywhere (field or otherwise) by id.
func (m *Match) findInstance(instanceID string) (*CardInstance, int, bool) {
	if slot, idx, ok := m.findSlot(instanceID); ok {
		return slot.Instance, idx, true
	}
	for idx, p := range m.Players {
		for _, c := range p.Hand {
			if c.InstanceID == instanceID {
				return c, idx, true
			}
		}
		for _, c := range p.Trash {
			if c.InstanceID == instanceID {
				return c, idx, true
			}
		}
		for _, c := range p.Deck {
			if c.InstanceID == instanceID {
				return c, idx, true
			}
		}
		for _, c := range p.Life {
			if c.InstanceID == instanceID {
				return c, idx, true
			}
		}
	}
	return nil, -1, false
}

// ownerOf returns the owning player index for instanceID, defaulting to -1
// when the instance isn't known to this match.
func (m *Match) ownerOf(instanceID string) int {
	if _, idx, ok := m.findInstance(instanceID); ok {
		return idx
	}
	return -1
}

func removeInstance(list []*CardInstance, instanceID string) ([]*CardInstance, *CardInstance) {
	for i, c := range list {
		if c.InstanceID == instanceID {
			removed := c
			list = append(list[:i], list[i+1:]...)
			return list, removed
		}
	}
	return list, nil
}

func removeCharacterSlot(slots []*Slot, instanceID string) ([]*Slot, *Slot) {
	for i, s := range slots {
		if s.Instance != nil && s.Instance.InstanceID == instanceID {
			removed := s
			slots = append(slots[:i], slots[i+1:]...)
			return slots, removed
		}
	}
	return slots, nil
}
