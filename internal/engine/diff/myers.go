package diff

// Myers is a character-level Myers diff engine.
type Myers struct {
	maxMemoryMB int
	fallback    Engine
}

// NewMyers creates a Myers engine.
func NewMyers(opts Options) *Myers {
	maxMem := opts.MaxMemoryMB
	if maxMem == 0 {
		maxMem = DefaultMaxMemoryMB
	}
	return &Myers{
		maxMemoryMB: maxMem,
		fallback:    NewDMP(),
	}
}

// Name returns the algorithm name.
func (m *Myers) Name() string {
	return AlgorithmMyers
}

// Diff returns the character diff of oldText and newText.
func (m *Myers) Diff(oldText, newText string) []Op {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Op{NewOp(Equal, oldText)}
	}

	a := []rune(oldText)
	b := []rune(newText)

	// Trim the common prefix and suffix; they never take part in the edit
	// script and trimming keeps the trace small for typical single edits.
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	midA := a[prefix : len(a)-suffix]
	midB := b[prefix : len(b)-suffix]

	if m.exceedsMemory(len(midA), len(midB)) {
		return m.fallback.Diff(oldText, newText)
	}

	ops := make([]Op, 0, 8)
	if prefix > 0 {
		ops = append(ops, Op{Type: Equal, Text: string(a[:prefix]), Len: prefix})
	}
	ops = append(ops, toOps(myersScript(midA, midB), midA, midB)...)
	if suffix > 0 {
		ops = append(ops, Op{Type: Equal, Text: string(a[len(a)-suffix:]), Len: suffix})
	}
	return coalesce(ops)
}

// exceedsMemory estimates the trace size for inputs of length n and m.
// Myers keeps one V vector of 2*(n+m)+1 ints per edit distance step; in
// the worst case the distance is n+m.
func (m *Myers) exceedsMemory(n, k int) bool {
	if m.maxMemoryMB < 0 {
		return false
	}
	maxD := int64(n + k)
	estimatedBytes := maxD * (2*maxD + 1) * 8
	return estimatedBytes/(1024*1024) > int64(m.maxMemoryMB)
}

// editOp is a single step of the edit script.
type editOp struct {
	op       Type
	oldIndex int
	newIndex int
}

// myersScript implements the Myers algorithm over runes and returns the
// per-character edit script.
func myersScript(a, b []rune) []editOp {
	n := len(a)
	m := len(b)

	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]editOp, m)
		for i := 0; i < m; i++ {
			ops[i] = editOp{op: Insert, newIndex: i}
		}
		return ops
	}
	if m == 0 {
		ops := make([]editOp, n)
		for i := 0; i < n; i++ {
			ops[i] = editOp{op: Delete, oldIndex: i}
		}
		return ops
	}

	maxD := n + m
	offset := maxD // V[-max..max] maps to slice[0..2*max]
	v := make([]int, 2*maxD+1)

	var trace [][]int

outer:
	for d := 0; d <= maxD; d++ {
		// Save the state of the previous step before overwriting it.
		vCopy := make([]int, len(v))
		copy(vCopy, v)
		trace = append(trace, vCopy)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}

			y := x - k

			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[offset+k] = x

			if x >= n && y >= m {
				vFinal := make([]int, len(v))
				copy(vFinal, v)
				trace = append(trace, vFinal)
				break outer
			}
		}
	}

	return backtrack(trace, n, m, offset)
}

// backtrack reconstructs the edit script from the trace.
func backtrack(trace [][]int, n, m, offset int) []editOp {
	if len(trace) == 0 {
		return nil
	}

	x := n
	y := m
	var ops []editOp

	// trace holds one entry per edit distance plus the final state.
	for d := len(trace) - 2; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, editOp{op: Equal, oldIndex: x, newIndex: y})
		}

		if d > 0 {
			if x > prevX {
				x--
				ops = append(ops, editOp{op: Delete, oldIndex: x})
			} else if y > prevY {
				y--
				ops = append(ops, editOp{op: Insert, newIndex: y})
			}
		}
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}

	return ops
}

// toOps turns a per-character script into coalesced runs.
func toOps(script []editOp, a, b []rune) []Op {
	ops := make([]Op, 0, len(script))
	for _, s := range script {
		var r rune
		switch s.op {
		case Equal, Delete:
			r = a[s.oldIndex]
		case Insert:
			r = b[s.newIndex]
		}
		if n := len(ops); n > 0 && ops[n-1].Type == s.op {
			ops[n-1].Text += string(r)
			ops[n-1].Len++
			continue
		}
		ops = append(ops, Op{Type: s.op, Text: string(r), Len: 1})
	}
	return ops
}
