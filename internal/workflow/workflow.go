package workflow

import (
	"context"
	"fmt"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

type stage func(ctx context.Context, rt *Runtime, rs *RunState) error

// Execute runs the segmentation pipeline for a single document. It allocates
// a workspace, builds the state graph (segment → extract → classify →
// materialize), executes it, and clears the page artifacts. Extraction and
// classification stop at Settings.RunTimeout and degrade. A fatal error
// destroys the workspace before it is returned, so no partial output
// survives a failed run.
func Execute(ctx context.Context, rt *Runtime, in Input) (*Manifest, error) {
	ws, err := rt.Workspaces.Create(ctx)
	if err != nil {
		return nil, err
	}

	var failed error
	graph, err := buildGraph(rt, &failed)
	if err != nil {
		rt.discard(ctx, ws.ID)
		return nil, fmt.Errorf("build graph: %w", err)
	}

	var deadline time.Time
	if rt.Settings.RunTimeout > 0 {
		deadline = time.Now().Add(rt.Settings.RunTimeout)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRun, RunState{
		RunID:       in.RunID,
		WorkspaceID: ws.ID,
		Filename:    in.Filename,
		Source:      in.Data,
		ws:          ws,
		deadline:    deadline,
	})

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		rt.discard(ctx, ws.ID)
		if failed != nil {
			return nil, failed
		}
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	rs, err := runState(finalState)
	if err != nil {
		rt.discard(ctx, ws.ID)
		return nil, err
	}

	if err := rt.Workspaces.ClearPages(context.WithoutCancel(ctx), ws.ID); err != nil {
		rt.Logger.WarnContext(ctx, "page cleanup failed", "workspace_id", ws.ID, "error", err)
	}

	m := buildManifest(rs)
	rt.Logger.InfoContext(
		ctx, "segmentation complete",
		"run_id", m.RunID,
		"workspace_id", m.WorkspaceID,
		"total_pages", m.TotalPages,
		"groups", len(m.Groups),
		"fallback", m.Fallback,
		"warnings", len(m.Warnings),
	)
	return m, nil
}

func buildGraph(rt *Runtime, failed *error) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("folio-segment")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		fn   stage
	}{
		{"segment", segment},
		{"extract", extract},
		{"classify", classify},
		{"materialize", materialize},
	}

	for i, n := range nodes {
		if err := graph.AddNode(n.name, node(rt, n.name, n.fn, failed)); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := graph.AddEdge(nodes[i-1].name, n.name, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint(nodes[0].name); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(nodes[len(nodes)-1].name); err != nil {
		return nil, err
	}

	return graph, nil
}

// node adapts a stage to a state graph node. The stage's error is recorded
// in failed so Execute can return it with its sentinel chain intact.
func node(rt *Runtime, name string, fn stage, failed *error) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		rs, err := runState(s)
		if err != nil {
			*failed = err
			return s, err
		}

		if err := fn(ctx, rt, &rs); err != nil {
			*failed = err
			return s, fmt.Errorf("%s: %w", name, err)
		}

		return s.Set(KeyRun, rs), nil
	})
}

func runState(s state.State) (RunState, error) {
	val, ok := s.Get(KeyRun)
	if !ok {
		return RunState{}, fmt.Errorf("missing %s in state", KeyRun)
	}

	rs, ok := val.(RunState)
	if !ok {
		return RunState{}, fmt.Errorf("%s is not RunState", KeyRun)
	}

	return rs, nil
}

func (rt *Runtime) discard(ctx context.Context, id string) {
	if err := rt.Workspaces.Destroy(context.WithoutCancel(ctx), id); err != nil {
		rt.Logger.ErrorContext(ctx, "workspace teardown failed", "workspace_id", id, "error", err)
	}
}
