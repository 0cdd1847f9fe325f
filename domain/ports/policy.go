package ports

import "github.com/kb-labs/registry-host/domain/entities"

// Policy enforces capability grants against runtime requests.
type Policy interface {
	CheckNetwork(req entities.NetworkRequest, grants *entities.PermissionSpec) bool
	CheckFileSystem(req entities.FileSystemRequest, grants *entities.PermissionSpec) bool
	CheckEnvironment(req entities.EnvironmentRequest, grants *entities.PermissionSpec) bool
	CheckExec(req entities.ExecRequest, grants *entities.PermissionSpec) bool
	CheckKeyValue(req entities.KeyValueRequest, grants *entities.PermissionSpec) bool
}
