package topology

// bitset is a growable set of half-edge indices.
type bitset []uint64

func (b *bitset) set(i EdgeID) {
	w := int(i) >> 6
	for len(*b) <= w {
		*b = append(*b, 0)
	}
	(*b)[w] |= 1 << (uint(i) & 63)
}

func (b bitset) has(i EdgeID) bool {
	w := int(i) >> 6
	return w < len(b) && b[w]&(1<<(uint(i)&63)) != 0
}

func (b *bitset) clear() {
	for i := range *b {
		(*b)[i] = 0
	}
}
