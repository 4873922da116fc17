package panel

import (
	"context"

	"webpanel/pkg/types"
)

// Executor runs fn on the UI thread and waits for it. *uiloop.Loop satisfies it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Service adapts a Registry to the wire types used by the HTTP API and the
// TUI. When Exec is set every verb runs on the UI thread.
type Service struct {
	Reg  *Registry
	Exec Executor
}

// NewService returns a Service; exec may be nil to call the registry inline.
func NewService(reg *Registry, exec Executor) *Service {
	return &Service{Reg: reg, Exec: exec}
}

func (s *Service) do(ctx context.Context, fn func() error) error {
	if s.Exec == nil {
		return fn()
	}
	var err error
	if derr := s.Exec.Do(ctx, func() { err = fn() }); derr != nil {
		return derr
	}
	return err
}

func (s *Service) status(info Info) types.InstanceStatus {
	return StatusOf(info, info.ID == s.Reg.ActiveInstance())
}

// List returns every instance and the active id.
func (s *Service) List() types.InstancesResponse {
	active := s.Reg.ActiveInstance()
	list := s.Reg.List()
	out := types.InstancesResponse{Instances: make([]types.InstanceStatus, 0, len(list)), Active: active}
	for _, info := range list {
		out.Instances = append(out.Instances, StatusOf(info, info.ID == active))
	}
	return out
}

// Get returns one instance; an empty id means the active instance.
func (s *Service) Get(id string) (types.InstanceStatus, error) {
	id = s.Reg.resolve(id)
	info, ok := s.Reg.GetByID(id)
	if !ok {
		return types.InstanceStatus{}, ErrInstanceNotFound(id)
	}
	return s.status(info), nil
}

// Open creates or activates an instance.
func (s *Service) Open(ctx context.Context, req types.OpenRequest) (types.InstanceStatus, error) {
	var info Info
	err := s.do(ctx, func() error {
		var err error
		info, err = s.Reg.Open(ctx, EnsureRequest{
			ID:       req.ID,
			URL:      req.URL,
			Title:    req.Title,
			Mode:     ParsePanelMode(req.Mode),
			Generate: req.New,
		})
		return err
	})
	if err != nil {
		return types.InstanceStatus{}, err
	}
	return s.status(info), nil
}

// Navigate sends the instance to url.
func (s *Service) Navigate(ctx context.Context, id, url string) (types.InstanceStatus, error) {
	var info Info
	err := s.do(ctx, func() error {
		var err error
		info, err = s.Reg.Navigate(ctx, id, url)
		return err
	})
	if err != nil {
		return types.InstanceStatus{}, err
	}
	return s.status(info), nil
}

func (s *Service) Focus(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.Activate(id) })
}

func (s *Service) ToggleFindBar(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.ToggleFindBar(id) })
}

func (s *Service) Find(ctx context.Context, id string, req types.FindRequest) error {
	return s.do(ctx, func() error { return s.Reg.Find(id, req.Query, req.CaseSensitive, req.HighlightAll) })
}

func (s *Service) FindNext(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.FindNext(id) })
}

func (s *Service) FindPrev(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.FindPrev(id) })
}

func (s *Service) CloseFind(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.CloseFind(id) })
}

func (s *Service) Close(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.Reg.Close(id) })
}

// Purge removes instances whose window died.
func (s *Service) Purge(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func() error {
		n = s.Reg.PurgeDead()
		return nil
	})
	return n, err
}

// Status returns the registry overview.
func (s *Service) Status() types.StatusResponse { return s.Reg.Status() }

// Ready reports whether the engine can create instances.
func (s *Service) Ready() bool { return s.Reg.engine.Available() == nil }
