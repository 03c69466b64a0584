package service

import "strconv"

// Waiters reports how many GetUser callers share the request for userID.
func (s *UserService) Waiters(userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call, ok := s.calls[strconv.Itoa(userID)]; ok {
		return call.waiters
	}
	return 0
}
