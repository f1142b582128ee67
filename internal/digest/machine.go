package digest

import "time"

// Machine is the per-user digest state machine described in spec §4.1.
// It is fed events one at a time via Feed and flushed once at the end
// of the stream via Flush. A Machine must not be shared across users.
type Machine struct {
	params Params

	open bool
	cur  builder

	lastTime time.Time
	lastCell Cell
}

// builder is the mutable, in-progress digest. It is frozen into a
// Digest value only when the machine closes it.
type builder struct {
	typ          Type
	startTime    time.Time
	startCell    Cell
	eventsInCell map[Cell]int
	numEvents    int
}

func (b *builder) numCells() int {
	return len(b.eventsInCell)
}

// freeze turns the builder into an immutable Digest, closing it at
// (endTime, endCell).
func (b *builder) freeze(endTime time.Time, endCell Cell) Digest {
	cells := make(map[Cell]int, len(b.eventsInCell))
	for k, v := range b.eventsInCell {
		cells[k] = v
	}
	return Digest{
		StartTime:    b.startTime,
		EndTime:      endTime,
		StartCell:    b.startCell,
		EndCell:      endCell,
		EventsInCell: cells,
		NumCells:     len(cells),
		NumEvents:    b.numEvents,
		Type:         b.typ,
	}
}

// NewMachine validates p and returns a fresh, empty Machine.
func NewMachine(p Params) (*Machine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Machine{params: p}, nil
}

// openFresh starts a brand new one-event ShortOneCell digest at (t, c)
// and records it as the most recently absorbed event.
func (m *Machine) openFresh(t time.Time, c Cell) {
	m.open = true
	m.cur = builder{
		typ:          ShortOneCell,
		startTime:    t,
		startCell:    c,
		eventsInCell: map[Cell]int{c: 1},
		numEvents:    1,
	}
	m.lastTime = t
	m.lastCell = c
}

// continueEvent absorbs (t, c) into the open digest without changing
// its cell set.
func (m *Machine) continueEvent(t time.Time, c Cell) {
	m.cur.eventsInCell[c]++
	m.cur.numEvents++
	m.lastTime = t
	m.lastCell = c
}

// addCell absorbs (t, c) into the open digest, introducing a new cell.
func (m *Machine) addCell(t time.Time, c Cell) {
	m.cur.eventsInCell[c] = 1
	m.cur.numEvents++
	m.lastTime = t
	m.lastCell = c
}

// closeAndRestart closes the open digest (ending at the last absorbed
// event) and opens the next one per the seam rule in spec §4.1 step 5,
// feeding the triggering event (t, c) into the fresh state. It returns
// the digest that was closed.
func (m *Machine) closeAndRestart(t time.Time, c Cell) (Digest, error) {
	prev := m.cur.freeze(m.lastTime, m.lastCell)
	m.open = false

	if prev.NumEvents > 1 {
		// Seam: the closing digest covered more than one event, so the
		// triggering event becomes the first event of a new digest
		// seeded at the previous digest's end. Feeding it recursively
		// produces the seam prev.EndTime == next.StartTime.
		m.openFresh(m.lastTime, m.lastCell)
		if _, err := m.Feed(t, c); err != nil {
			return Digest{}, err
		}
	} else {
		m.openFresh(t, c)
	}
	return prev, nil
}

// Feed advances the machine by one event. It returns a non-nil Digest
// whenever absorbing the event closes the previously open digest — the
// state machine is causal, so any digest returned here is final and
// will never be mutated again.
//
// Feed returns UnorderedEventsError if t is strictly before the
// previously fed event's time; duplicate timestamps (dt == 0) are legal.
func (m *Machine) Feed(t time.Time, c Cell) (*Digest, error) {
	if !m.open {
		m.openFresh(t, c)
		return nil, nil
	}

	dt := t.Sub(m.lastTime)
	if dt < 0 {
		return nil, &UnorderedEventsError{PrevTime: m.lastTime, CurTime: t}
	}
	_, dc := m.cur.eventsInCell[c]
	dc = !dc

	switch m.cur.typ {
	case ShortOneCell:
		switch {
		case dt < m.params.ShortDt && !dc:
			m.continueEvent(t, c)
		case dt < m.params.ShortDt:
			m.addCell(t, c)
			m.cur.typ = ShortTwoCell
		case dt < m.params.LongDt && !dc:
			m.continueEvent(t, c)
			m.cur.typ = LongOneCell
		default:
			closed, err := m.closeAndRestart(t, c)
			if err != nil {
				return nil, err
			}
			return &closed, nil
		}
	case ShortTwoCell:
		switch {
		case dt < m.params.ShortDt && !dc:
			m.continueEvent(t, c)
		case dt < m.params.ShortDt:
			m.addCell(t, c)
			m.cur.typ = ShortThreeCell
		default:
			closed, err := m.closeAndRestart(t, c)
			if err != nil {
				return nil, err
			}
			return &closed, nil
		}
	case ShortThreeCell:
		switch {
		case dt < m.params.ShortDt && !dc:
			m.continueEvent(t, c)
		default:
			closed, err := m.closeAndRestart(t, c)
			if err != nil {
				return nil, err
			}
			return &closed, nil
		}
	case LongOneCell:
		switch {
		case dt < m.params.LongDt && !dc:
			m.continueEvent(t, c)
		default:
			closed, err := m.closeAndRestart(t, c)
			if err != nil {
				return nil, err
			}
			return &closed, nil
		}
	}

	// Cutoff bound: a digest may never span more than params.Cutoff,
	// regardless of activity. Re-triggering with the same event mirrors
	// the ordinary close+restart path, including its seam behaviour.
	if m.open && m.lastTime.Sub(m.cur.startTime) > m.params.Cutoff {
		closed, err := m.closeAndRestart(t, c)
		if err != nil {
			return nil, err
		}
		return &closed, nil
	}
	return nil, nil
}

// Flush closes and returns the open digest, if any, ending it at the
// last absorbed event. It must be called exactly once after the input
// is exhausted. A nil return means no events were ever fed.
func (m *Machine) Flush() *Digest {
	if !m.open {
		return nil
	}
	d := m.cur.freeze(m.lastTime, m.lastCell)
	m.open = false
	return &d
}

// Run feeds every event in order and returns the full digest sequence,
// including the final flushed digest.
func Run(events []Event, p Params) ([]Digest, error) {
	m, err := NewMachine(p)
	if err != nil {
		return nil, err
	}
	digests := make([]Digest, 0, len(events))
	for _, e := range events {
		d, err := m.Feed(e.Time, e.Cell)
		if err != nil {
			return nil, err
		}
		if d != nil {
			digests = append(digests, *d)
		}
	}
	if d := m.Flush(); d != nil {
		digests = append(digests, *d)
	}
	return digests, nil
}
