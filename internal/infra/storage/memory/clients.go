package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainclient "hotelbook/internal/domain/client"
)

// ClientRepository stores clients in memory with unique email and phone.
type ClientRepository struct {
	mu      sync.RWMutex
	byID    map[domainclient.ID]*domainclient.Client
	byEmail map[string]domainclient.ID
	byPhone map[string]domainclient.ID
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		byID:    make(map[domainclient.ID]*domainclient.Client),
		byEmail: make(map[string]domainclient.ID),
		byPhone: make(map[string]domainclient.ID),
	}
}

func (r *ClientRepository) ByID(ctx context.Context, id domainclient.ID) (*domainclient.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[id]; ok {
		return cloneClient(c), nil
	}
	return nil, domainclient.ErrNotFound
}

func (r *ClientRepository) ByEmail(ctx context.Context, email string) (*domainclient.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainclient.NormalizeEmail(email)]
	if !ok {
		return nil, domainclient.ErrNotFound
	}
	if c, ok := r.byID[id]; ok {
		return cloneClient(c), nil
	}
	return nil, domainclient.ErrNotFound
}

// Find returns clients ordered by name.
func (r *ClientRepository) Find(ctx context.Context, filter domainclient.Filter) ([]*domainclient.Client, error) {
	r.mu.RLock()
	out := make([]*domainclient.Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneClient(c))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return paginate(out, filter.Skip, filter.Limit), nil
}

func (r *ClientRepository) Save(ctx context.Context, c *domainclient.Client) error {
	if c == nil || strings.TrimSpace(string(c.ID)) == "" {
		return domainclient.ErrIDRequired
	}
	email := domainclient.NormalizeEmail(c.Email)
	phone := domainclient.NormalizePhone(c.Phone)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[email]; ok && owner != c.ID {
		return domainclient.ErrEmailAlreadyUsed
	}
	if owner, ok := r.byPhone[phone]; ok && owner != c.ID {
		return domainclient.ErrPhoneAlreadyUsed
	}
	if prev, ok := r.byID[c.ID]; ok {
		delete(r.byEmail, domainclient.NormalizeEmail(prev.Email))
		delete(r.byPhone, domainclient.NormalizePhone(prev.Phone))
	}
	r.byID[c.ID] = cloneClient(c)
	r.byEmail[email] = c.ID
	if phone != "" {
		r.byPhone[phone] = c.ID
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id domainclient.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return domainclient.ErrNotFound
	}
	delete(r.byEmail, domainclient.NormalizeEmail(c.Email))
	delete(r.byPhone, domainclient.NormalizePhone(c.Phone))
	delete(r.byID, id)
	return nil
}

func cloneClient(c *domainclient.Client) *domainclient.Client {
	if c == nil {
		return nil
	}
	copyClient := *c
	if len(c.Roles) > 0 {
		copyClient.Roles = append([]domainclient.Role(nil), c.Roles...)
	}
	return &copyClient
}
