package panel

import (
	"context"
	"fmt"
	"sort"
)

// Persisted is the durable part of an instance.
type Persisted struct {
	ID            string
	LastURL       string
	TitleOverride string
	Mode          PanelMode
	Dock          DockState
}

// Persister stores instance state between runs.
type Persister interface {
	SaveAll(ctx context.Context, items []Persisted) error
	LoadAll(ctx context.Context) ([]Persisted, error)
}

// SaveAll writes live instances plus remembered ones not yet reopened.
func (r *Registry) SaveAll(ctx context.Context) error {
	if r.persister == nil {
		return nil
	}
	r.mu.RLock()
	items := make([]Persisted, 0, len(r.records)+len(r.remembered))
	for _, rec := range r.records {
		items = append(items, Persisted{
			ID:            rec.id,
			LastURL:       rec.lastURL,
			TitleOverride: rec.titleOverride,
			Mode:          rec.mode,
			Dock:          rec.dock,
		})
	}
	for id, p := range r.remembered {
		if _, live := r.records[id]; !live {
			items = append(items, p)
		}
	}
	r.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if err := r.persister.SaveAll(ctx, items); err != nil {
		return fmt.Errorf("save instances: %w", err)
	}
	r.log.Debug().Int("count", len(items)).Msg("instances saved")
	return nil
}

// LoadAll reads persisted state. Entries are applied when their id is next
// ensured; live instances are not modified.
func (r *Registry) LoadAll(ctx context.Context) (int, error) {
	if r.persister == nil {
		return 0, nil
	}
	items, err := r.persister.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load instances: %w", err)
	}
	r.mu.Lock()
	n := 0
	for _, p := range items {
		if p.ID == "" {
			continue
		}
		if _, live := r.records[p.ID]; live {
			continue
		}
		r.remembered[p.ID] = p
		n++
	}
	r.mu.Unlock()
	r.log.Debug().Int("count", n).Msg("instances loaded")
	return n, nil
}

// RestoreAlways opens every remembered instance whose mode is ModeAlways and
// returns the restored ids.
func (r *Registry) RestoreAlways(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	var ids []string
	for id, p := range r.remembered {
		if p.Mode == ModeAlways {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := r.EnsureAndMaybeNavigate(ctx, EnsureRequest{ID: id}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
