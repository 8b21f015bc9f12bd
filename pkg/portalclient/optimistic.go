package portalclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// State holds a value shared with the UI layer.
type State[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewState[T any](value T) *State[T] {
	return &State[T]{value: value}
}

func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *State[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

// WithOptimisticUpdate shows apply's result immediately and restores the snapshot if commit fails.
// apply must return a new value rather than mutate the one it is given.
func WithOptimisticUpdate[T any](state *State[T], apply func(T) T, commit func() error) error {
	snapshot := state.Get()
	state.Set(apply(snapshot))

	if err := commit(); err != nil {
		state.Set(snapshot)
		return err
	}
	return nil
}

type DepartmentPermissions struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	AllowedApps []string `json:"allowed_apps"`
}

// DepartmentPermissions fetches the matrix rows used by the permission screen.
func (c *Client) DepartmentPermissions(ctx context.Context) ([]DepartmentPermissions, error) {
	var matrix struct {
		Departments []DepartmentPermissions `json:"departments"`
	}
	if err := c.do(ctx, http.MethodGet, "/departments/permissions", nil, &matrix); err != nil {
		return nil, err
	}
	return matrix.Departments, nil
}

// ToggleDepartmentApp flips one cell of the permission matrix optimistically.
func (c *Client) ToggleDepartmentApp(ctx context.Context, state *State[[]DepartmentPermissions], departmentID int64, appCode string, enabled bool) error {
	return WithOptimisticUpdate(state,
		func(current []DepartmentPermissions) []DepartmentPermissions {
			return toggleApp(current, departmentID, appCode, enabled)
		},
		func() error {
			path := fmt.Sprintf("/departments/%d/permissions/%s", departmentID, appCode)
			return c.do(ctx, http.MethodPatch, path, map[string]bool{"enabled": enabled}, nil)
		},
	)
}

func toggleApp(current []DepartmentPermissions, departmentID int64, appCode string, enabled bool) []DepartmentPermissions {
	next := make([]DepartmentPermissions, len(current))
	for i, d := range current {
		next[i] = d
		if d.ID != departmentID {
			continue
		}
		apps := make([]string, 0, len(d.AllowedApps)+1)
		present := false
		for _, code := range d.AllowedApps {
			if strings.EqualFold(code, appCode) {
				present = true
				if !enabled {
					continue
				}
			}
			apps = append(apps, code)
		}
		if enabled && !present {
			apps = append(apps, appCode)
		}
		next[i].AllowedApps = apps
	}
	return next
}
