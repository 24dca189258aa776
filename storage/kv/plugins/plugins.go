package plugins

import (
	"github.com/scopekv/scopekv/storage/kv"
	"github.com/scopekv/scopekv/storage/kv/plugins/bbolt"
	"github.com/scopekv/scopekv/storage/kv/plugins/dynamodb"
)

var plugins []kv.Plugin

func init() {
	plugins = append(plugins, &memoryPlugin{})
	plugins = append(plugins, bbolt.Plugins()...)
	plugins = append(plugins, dynamodb.Plugins()...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) kv.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins returns all registered plugins
func Plugins() []kv.Plugin {
	return plugins
}

// memoryPlugin exposes the in-memory store through the plugin
// interface so driver-generic tests cover it.
type memoryPlugin struct {
}

func (plugin *memoryPlugin) Name() string {
	return "memory"
}

func (plugin *memoryPlugin) NewStore(options kv.PluginOptions) (kv.Store, error) {
	return kv.NewMemoryStore(), nil
}

func (plugin *memoryPlugin) NewTempStore() (kv.Store, error) {
	return kv.NewMemoryStore(), nil
}
