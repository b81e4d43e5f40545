package dtls

import "sort"

// fragment is one received byte range of a fragmented handshake message.
type fragment struct {
	offset uint32
	data   []byte
}

// fragmentSet accumulates the non-overlapping, sorted fragments received
// so far for one message_seq.
type fragmentSet struct {
	frags           []*fragment
	receivedLength  uint32
	handshakeLength uint32
	msgType         byte
}

// scanUncovered calls visit once per uncovered sub-range of [start,end),
// in ascending order, given the existing sorted fragments. Grounded on
// the teacher's fragmentBuffer.scanUncovered, unchanged in approach:
// binary-search to the first candidate fragment, then walk forward.
func (s *fragmentSet) scanUncovered(start, end uint32, visit func(uStart, uEnd uint32)) {
	if start >= end {
		return
	}

	i := sort.Search(len(s.frags), func(i int) bool {
		ex := s.frags[i]

		return ex.offset+uint32(len(ex.data)) > start
	})

	pos := start
	for ; i < len(s.frags); i++ {
		ex := s.frags[i]
		if ex.offset >= end {
			break
		}
		exEnd := ex.offset + uint32(len(ex.data))

		if ex.offset > pos {
			uEnd := ex.offset
			if uEnd > end {
				uEnd = end
			}
			if uEnd > pos {
				visit(pos, uEnd)
			}
		}

		if exEnd > pos {
			pos = exEnd
			if pos >= end {
				return
			}
		}
	}

	if pos < end {
		visit(pos, end)
	}
}

// insertMany merges a sorted list of new, non-overlapping fragments into
// the existing sorted list.
func (s *fragmentSet) insertMany(newFrags []*fragment) {
	if len(newFrags) == 0 {
		return
	}
	if len(s.frags) == 0 {
		s.frags = newFrags

		return
	}

	merged := make([]*fragment, 0, len(s.frags)+len(newFrags))
	i, j := 0, 0
	for i < len(s.frags) && j < len(newFrags) {
		if s.frags[i].offset < newFrags[j].offset {
			merged = append(merged, s.frags[i])
			i++
		} else {
			merged = append(merged, newFrags[j])
			j++
		}
	}
	merged = append(merged, s.frags[i:]...)
	merged = append(merged, newFrags[j:]...)
	s.frags = merged
}

// complete reports whether every byte of the message has been received.
func (s *fragmentSet) complete() bool {
	return s.receivedLength == s.handshakeLength
}

// assemble concatenates the covered fragments into the full message body.
func (s *fragmentSet) assemble() []byte {
	out := make([]byte, s.handshakeLength)
	for _, f := range s.frags {
		copy(out[f.offset:], f.data)
	}

	return out
}

const reassemblyMaxBufferedBytes = 2_000_000

// ReassemblyState holds per-message-sequence fragment buffers for the
// handshake messages currently in flight. Entries are released as soon
// as a message completes.
type ReassemblyState struct {
	sets        map[uint16]*fragmentSet
	bufferedBytes int
}

// NewReassemblyState returns an empty ReassemblyState.
func NewReassemblyState() *ReassemblyState {
	return &ReassemblyState{sets: make(map[uint16]*fragmentSet)}
}

// Insert records one fragment of a handshake message. It returns the
// fully assembled message body once every fragment has arrived;
// otherwise it returns (nil, false).
func (r *ReassemblyState) Insert(msgType byte, messageSeq uint16, totalLength, fragOffset, fragLength uint32, payload []byte) ([]byte, bool, error) {
	set, ok := r.sets[messageSeq]
	if !ok {
		set = &fragmentSet{handshakeLength: totalLength, msgType: msgType}
		r.sets[messageSeq] = set
	} else if set.handshakeLength != totalLength || set.msgType != msgType {
		return nil, false, errMalformedMessage
	}

	if set.complete() {
		return set.assemble(), true, nil
	}

	fragEnd := fragOffset + fragLength
	var added uint32
	var newFrags []*fragment

	emit := func(uStart, uEnd uint32) {
		if uEnd <= uStart {
			return
		}
		relStart := uStart - fragOffset
		relEnd := uEnd - fragOffset
		data := append([]byte{}, payload[relStart:relEnd]...)
		newFrags = append(newFrags, &fragment{offset: uStart, data: data})
		added += uEnd - uStart
	}

	if len(set.frags) == 0 {
		emit(fragOffset, fragEnd)
	} else {
		set.scanUncovered(fragOffset, fragEnd, emit)
	}

	if r.bufferedBytes+int(added) > reassemblyMaxBufferedBytes {
		return nil, false, errMalformedMessage
	}

	set.insertMany(newFrags)
	set.receivedLength += added
	r.bufferedBytes += int(added)

	if !set.complete() {
		return nil, false, nil
	}

	body := set.assemble()
	delete(r.sets, messageSeq)
	r.bufferedBytes -= int(set.receivedLength)

	return body, true, nil
}
