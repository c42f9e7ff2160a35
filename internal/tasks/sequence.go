package tasks

// sequence hands out task ids. It never returns an id at or below one it has observed,
// so ids stay unique after a collection is loaded from storage.
type sequence struct {
	last int64
}

func (s *sequence) next() int64 {
	s.last++
	return s.last
}

func (s *sequence) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
