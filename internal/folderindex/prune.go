package folderindex

import "archived/internal/wyhash"

// MightContain reports whether addr could be present in the folder's
// address bloom filter, hashed with WyHash seed 0. A nil filter (folder
// carries no bloom summary) is treated as
// "might contain everything" so pruning degrades to a no-op rather than
// silently dropping data.
func (f *FolderIndex) MightContain(addr []byte) bool {
	if f.AddressFilter == nil {
		return true
	}
	return f.AddressFilter.ContainsHash(wyhash.Hash(0, addr))
}

// PruneAddresses filters addrs down to those that might be present in the
// folder's bloom filter, preserving order.
func (f *FolderIndex) PruneAddresses(addrs [][]byte) [][]byte {
	if f.AddressFilter == nil {
		return addrs
	}
	var kept [][]byte
	for _, a := range addrs {
		if f.MightContain(a) {
			kept = append(kept, a)
		}
	}
	return kept
}
