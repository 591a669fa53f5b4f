package bpe

// replacePair replaces every non-overlapping occurrence of p, scanning left to
// right, with id. A merged token is not reconsidered in the same pass.
// Returns ids unchanged when p does not occur.
func replacePair(ids []ID, p Pair, id ID) []ID {
	found := false
	for i := 0; i < len(ids)-1; i++ {
		if ids[i] == p.Left && ids[i+1] == p.Right {
			found = true
			break
		}
	}
	if !found {
		return ids
	}

	out := make([]ID, 0, len(ids))
	i := 0
	for i < len(ids) {
		if i+1 < len(ids) && ids[i] == p.Left && ids[i+1] == p.Right {
			out = append(out, id)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}

func bytesToIDs(raw []byte) []ID {
	ids := make([]ID, len(raw))
	for i, b := range raw {
		ids[i] = ID(b)
	}
	return ids
}
