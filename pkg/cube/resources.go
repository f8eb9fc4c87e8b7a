package cube

import (
	"context"
	"fmt"
)

// Typed follow-ups on Linked handles. Go does not allow extra type
// parameters on methods, so these are package-level functions keyed by the
// resource type of the handle.

// PluginParameters returns the parameters collection of a plugin.
func PluginParameters(l *Linked[Plugin]) *Search[PluginParameter] {
	return Collection[PluginParameter](l, l.Resource.Parameters)
}

// PluginInstances returns the instances collection of a plugin: every run of
// it visible to the client.
func PluginInstances(l *Linked[Plugin]) *Search[PluginInstance] {
	return Collection[PluginInstance](l, l.Resource.Instances)
}

// InstanceFiles returns the output files of a plugin instance.
func InstanceFiles(l *Linked[PluginInstance]) *Search[FileResource] {
	return Collection[FileResource](l, l.Resource.Files)
}

// FeedFiles returns every file of a feed, across all of its plugin
// instances.
func FeedFiles(l *Linked[Feed]) *Search[FileResource] {
	return Collection[FileResource](l, l.Resource.Files)
}

// FeedPluginInstances returns the plugin instances of a feed.
func FeedPluginInstances(l *Linked[Feed]) *Search[PluginInstance] {
	return Collection[PluginInstance](l, l.Resource.PluginInstances)
}

// PipelineWorkflows returns the workflows collection of a pipeline.
func PipelineWorkflows(l *Linked[Pipeline]) *Search[Workflow] {
	return Collection[Workflow](l, l.Resource.Workflows)
}

// CreateWorkflow runs a pipeline by posting workflow parameters (such as
// previous_plugin_inst_id and nodes_info) to its workflows endpoint.
// Requires read-write access.
func CreateWorkflow(ctx context.Context, l *Linked[Pipeline], params map[string]any) (*Linked[Workflow], error) {
	if !l.access.CanWrite() {
		return nil, ErrReadOnlyAccess
	}

	var workflow Workflow

	err := l.rq.PostJSON(ctx, l.Resource.Workflows, params, &workflow)
	if err != nil {
		return nil, fmt.Errorf("creating workflow for pipeline %d: %w", l.Resource.ID, err)
	}

	return NewLinked(l.rq, workflow, l.access), nil
}
