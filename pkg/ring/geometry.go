package ring

// Ring geometry. A buffer with capacity c keeps its live elements in the
// wrapping span [head, head+size) of a slot array of length c. Offsets are
// logical positions relative to the front; slots are physical indices.

// physical maps a logical offset in [0, capacity] to a slot index.
func physical(head, offset, capacity int) int {
	i := head + offset
	if i >= capacity {
		i -= capacity
	}
	return i
}

// logical is the inverse of physical for slots inside the live span.
func logical(head, slot, capacity int) int {
	off := slot - head
	if off < 0 {
		off += capacity
	}
	return off
}

// advance returns the slot after slot, wrapping at capacity.
func advance(slot, capacity int) int {
	slot++
	if slot == capacity {
		return 0
	}
	return slot
}

// retreat returns the slot before slot, wrapping at capacity.
func retreat(slot, capacity int) int {
	if slot == 0 {
		return capacity - 1
	}
	return slot - 1
}

// distance is the signed number of steps from offset a to offset b. It does
// not depend on capacity.
func distance(a, b int) int {
	return b - a
}
