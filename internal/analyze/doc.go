// Package analyze loads Go packages and builds struct descriptors from
// go/types, without importing or running the analyzed code.
//
// It uses golang.org/x/tools/go/packages. Every exported, non-generic struct
// type of the loaded packages is added to a descriptor.Registry together with
// the structs reachable from its fields. The descriptors match what
// descriptor.Registry.Register produces for the same types through reflect.
package analyze
