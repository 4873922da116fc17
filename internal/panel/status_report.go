package panel

import (
	"time"

	"webpanel/pkg/types"
)

// StatusOf converts a snapshot to its wire form.
func StatusOf(info Info, active bool) types.InstanceStatus {
	return types.InstanceStatus{
		ID:            info.ID,
		WasRandom:     info.WasRandom,
		State:         info.State.String(),
		URL:           info.LastURL,
		Title:         info.LastTabTitle,
		WindowText:    info.LastWndText,
		TitleOverride: info.TitleOverride,
		Mode:          info.Mode.String(),
		Window:        info.Window.String(),
		Dock: types.DockStatus{
			WantDockOnCreate: int(info.Dock.WantDockOnCreate),
			LastDockIdx:      info.Dock.LastDockIdx,
			LastDockFloat:    info.Dock.LastDockFloat,
		},
		FocusTick: info.FocusTick,
		Active:    active,
		Find: types.FindStatus{
			State:        info.Find.State.String(),
			Query:        info.Find.Query,
			Current:      info.Find.Counter.Current,
			Total:        info.Find.Counter.Total,
			Supported:    info.Find.Supported,
			ShowBar:      info.Find.ShowBar,
			HighlightAll: info.Find.HighlightAll,
		},
		InitFailed:  info.InitFailed,
		InitError:   info.InitError,
		CreatedUnix: info.CreatedAt.Unix(),
	}
}

// Status builds the registry overview.
func (r *Registry) Status() types.StatusResponse {
	active := r.ActiveInstance()
	list := r.List()
	resp := types.StatusResponse{
		Engine:        r.engine.Name(),
		Active:        active,
		Instances:     make([]types.InstanceStatus, 0, len(list)),
		States:        map[string]int{},
		UptimeSeconds: int64(time.Since(r.startedAt).Seconds()),
	}
	for _, info := range list {
		resp.Instances = append(resp.Instances, StatusOf(info, info.ID == active))
		resp.States[info.State.String()]++
	}
	return resp
}
