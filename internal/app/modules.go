package app

import (
	"github.com/specialistvlad/plugtree/internal/registry"
	"github.com/specialistvlad/plugtree/modules/console"
	"github.com/specialistvlad/plugtree/modules/core"
	"github.com/specialistvlad/plugtree/modules/env_vars"
	"github.com/specialistvlad/plugtree/modules/http_client"
	"github.com/specialistvlad/plugtree/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the plugtree binary.
var coreModules = []registry.Module{
	&core.Module{},
	&console.Module{},
	&env_vars.Module{},
	&http_client.Module{},
	&socketio.Module{},
}
