package chunk

import "sort"

// Record describes a stored chunk
type Record struct {
	Address Address
	Size    int64
}

// Summary counts chunks and their cumulated size
type Summary struct {
	Count int
	Size  int64
}

// Records is a set of chunk records, typically a listing of the cache or of a remote
type Records []Record

// Addresses of the records, in order
func (r Records) Addresses() []Address {
	res := make([]Address, 0, len(r))
	for _, rec := range r {
		res = append(res, rec.Address)
	}
	return res
}

// Size of all records
func (r Records) Size() int64 {
	var total int64
	for _, rec := range r {
		total += rec.Size
	}
	return total
}

// Summary of the records
func (r Records) Summary() Summary {
	return Summary{Count: len(r), Size: r.Size()}
}

// Missing returns the records whose address is not present in others, sorted by address.
func (r Records) Missing(others Records) Records {
	known := make(map[Address]struct{}, len(others))
	for _, rec := range others {
		known[rec.Address] = struct{}{}
	}
	res := make(Records, 0, len(r))
	for _, rec := range r {
		if _, ok := known[rec.Address]; ok {
			continue
		}
		known[rec.Address] = struct{}{}
		res = append(res, rec)
	}
	res.Sort()
	return res
}

// Sort records by address
func (r Records) Sort() {
	sort.Slice(r, func(i, j int) bool { return r[i].Address < r[j].Address })
}

// Difference of candidates minus present, de-duplicated, in candidate order
func Difference(candidates []Address, present []Address) []Address {
	known := make(map[Address]struct{}, len(present))
	for _, a := range present {
		known[a] = struct{}{}
	}
	res := make([]Address, 0, len(candidates))
	for _, a := range candidates {
		if _, ok := known[a]; ok {
			continue
		}
		known[a] = struct{}{}
		res = append(res, a)
	}
	return res
}
