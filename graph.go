package eeg

import "sort"

// graphNode is one instantiated stage plus its declared (at most one)
// input edge.
type graphNode struct {
	name        string
	stage       Stage
	inputSource string
	hasInput    bool
}

// PipelineGraph is a built, topologically-ordered set of stages (spec.md
// §4.4). It retains everything needed to process a tick, dispatch a
// control command, and — if reconfiguration tears it down — to know what
// it was built from.
type PipelineGraph struct {
	nodes  map[string]*graphNode
	order  []string
	config SystemConfig
}

// BuildGraph constructs a PipelineGraph from cfg using registry's
// factories. See spec.md §4.4 for the exact algorithm: duplicate names and
// unknown stage types fail fast; every declared input must name a real
// stage; the resulting edge set must be acyclic.
func BuildGraph(cfg SystemConfig, registry *StageRegistry, initCtx *StageInitCtx) (*PipelineGraph, *PipelineError) {
	nodes := make(map[string]*graphNode, len(cfg.Stages))

	for _, sc := range cfg.Stages {
		if _, exists := nodes[sc.Name]; exists {
			return nil, newPipelineError(DuplicateStageName, sc.Name,
				"stage name %q declared more than once", sc.Name)
		}

		factory, schema, ok := registry.lookup(sc.StageType)
		if !ok {
			return nil, newPipelineError(StageNotFound, sc.StageType,
				"no factory registered for stage type %q", sc.StageType)
		}

		if err := registry.validateParams(sc.StageType, schema, sc.Params); err != nil {
			return nil, newPipelineError(InvalidConfiguration, sc.Name,
				"params for stage %q: %v", sc.Name, err)
		}

		stage, serr := factory.Create(sc, initCtx)
		if serr != nil {
			return nil, FromStageError(sc.Name, serr)
		}

		n := &graphNode{name: sc.Name, stage: stage}
		if len(sc.Inputs) > 0 {
			n.inputSource = sc.Inputs[0]
			n.hasInput = true
		}
		nodes[sc.Name] = n
	}

	for _, n := range nodes {
		if n.hasInput {
			if _, ok := nodes[n.inputSource]; !ok {
				return nil, newPipelineError(InvalidConfiguration, n.name,
					"stage %q declares input %q which does not exist", n.name, n.inputSource)
			}
		}
	}

	order, perr := topologicalSort(nodes)
	if perr != nil {
		return nil, perr
	}

	return &PipelineGraph{nodes: nodes, order: order, config: cfg}, nil
}

// topologicalSort runs Kahn's algorithm over nodes, where a node's
// indegree is 1 if it declares an input and 0 otherwise (every node has
// at most one input edge, so this is a forest absent a cycle). No example
// repo in the retrieval pack exposes a Go graph/toposort library, so this
// is hand-rolled against the standard library (see DESIGN.md).
func topologicalSort(nodes map[string]*graphNode) ([]string, *PipelineError) {
	indegree := make(map[string]int, len(nodes))
	children := make(map[string][]string, len(nodes))

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := nodes[name]
		if n.hasInput {
			indegree[name] = 1
			children[n.inputSource] = append(children[n.inputSource], name)
		} else {
			indegree[name] = 0
		}
	}

	var queue []string
	for _, name := range names {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		kids := append([]string(nil), children[cur]...)
		sort.Strings(kids)
		for _, kid := range kids {
			indegree[kid]--
			if indegree[kid] == 0 {
				queue = append(queue, kid)
			}
		}
	}

	if len(order) != len(nodes) {
		for _, name := range names {
			if indegree[name] > 0 {
				// An unsorted stage may only be downstream of a cycle.
				// Following its single input edge must enter the cycle;
				// the first stage reached twice is on it.
				visited := make(map[string]bool)
				cur := name
				for !visited[cur] {
					visited[cur] = true
					cur = nodes[cur].inputSource
				}
				return nil, newPipelineError(CircularDependency, cur,
					"stage %q participates in a dependency cycle", cur)
			}
		}
	}

	return order, nil
}

// Order returns the graph's topological execution order.
func (g *PipelineGraph) Order() []string {
	return append([]string(nil), g.order...)
}

// Config returns the SystemConfig this graph was built from, used when
// reconfiguration needs to preserve or diff against the previous topology.
func (g *PipelineGraph) Config() SystemConfig {
	return g.config
}

// Dispatch delivers cmd to every stage in topological order, collecting
// any non-nil StageErrors keyed by stage name. It does not interpret the
// errors — that policy decision belongs to the Executor (spec.md §7).
func (g *PipelineGraph) Dispatch(cmd ControlCommand, ctx *StageContext) map[string]*StageError {
	var errs map[string]*StageError
	for _, name := range g.order {
		n := g.nodes[name]
		ctx.forStage(name)
		if serr := n.stage.Control(cmd, ctx); serr != nil {
			if errs == nil {
				errs = map[string]*StageError{}
			}
			errs[name] = serr
		}
	}
	return errs
}

// Push runs pkt through every stage in topological order for one tick.
// Stages with no declared input receive pkt directly (spec.md §4.5 calls
// this "the graph's source"); every other stage resolves its input by
// looking up its predecessor's output from this tick, non-destructively,
// so that one producer can feed multiple consumers. A predecessor that
// produced nil for this tick causes the stage to be skipped entirely.
//
// At the end of the tick every packet touched — pkt and every non-nil
// per-stage output, deduplicated by identity since pass-through reuses the
// same pointer across several map slots — is released exactly once,
// because the single-threaded, per-tick-complete-before-next-begins
// execution model means every consumer has already finished reading it
// synchronously by the time Push returns.
func (g *PipelineGraph) Push(pkt *RtPacket, ctx *StageContext) *StageError {
	outputs := make(map[string]*RtPacket, len(g.order))

	for _, name := range g.order {
		n := g.nodes[name]

		var in *RtPacket
		if !n.hasInput {
			in = pkt
		} else {
			predOut, ok := outputs[n.inputSource]
			if !ok || predOut == nil {
				continue
			}
			in = predOut
		}

		ctx.forStage(name)
		out, serr := n.stage.Process(in, ctx)
		if serr != nil {
			if serr.Kind == Fatal || serr.Kind == BadConfig || serr.Kind == UnsupportedReconfig {
				releaseTick(pkt, outputs)
				return serr
			}
			if ctx.Log != nil {
				ctx.Log.Errorf("stage %s: %v", name, serr)
			}
			if serr.Kind == NotReady {
				ctx.Emit(PipelineEvent{Kind: EvtStage, StageID: name, EventName: "not_ready", EventData: nil})
			}
			outputs[name] = nil
			continue
		}

		outputs[name] = out
	}

	releaseTick(pkt, outputs)
	return nil
}

// Flush calls Flush on every stage that implements Drains, in topological
// order, collecting any errors keyed by stage name. Called once by the
// executor at the end of a successful drain (spec.md §4.5).
func (g *PipelineGraph) Flush() map[string]error {
	var errs map[string]error
	for _, name := range g.order {
		n := g.nodes[name]
		d, ok := n.stage.(Drains)
		if !ok {
			continue
		}
		if err := d.Flush(); err != nil {
			if errs == nil {
				errs = map[string]error{}
			}
			errs[name] = err
		}
	}
	return errs
}

func releaseTick(pkt *RtPacket, outputs map[string]*RtPacket) {
	seen := make(map[*RtPacket]bool, len(outputs)+1)
	if pkt != nil {
		seen[pkt] = true
		pkt.Release()
	}
	for _, out := range outputs {
		if out == nil || seen[out] {
			continue
		}
		seen[out] = true
		out.Release()
	}
}
