package memory

import (
	"context"
	"sort"

	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/models"
)

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return auth.ErrEmailTaken
		}
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) CountUsersByRole(_ context.Context, role models.UserRole) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.st.users))
	for _, u := range s.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) InsertAuditLog(_ context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.auditSeq++
	log.ID = s.st.auditSeq
	log.CreatedAt = s.now()
	s.st.auditLogs = append(s.st.auditLogs, *log)
	return nil
}

// ListAuditLogs returns newest first.
func (s *Store) ListAuditLogs(_ context.Context, f audit.Filter) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(s.st.auditLogs) - 1; i >= 0; i-- {
		l := s.st.auditLogs[i]
		switch {
		case f.EntityType != "" && l.EntityType != f.EntityType:
		case f.EntityID != "" && l.EntityID != f.EntityID:
		case f.UserID != "" && l.UserID != f.UserID:
		default:
			out = append(out, l)
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
