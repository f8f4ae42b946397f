// Package buildinfo exposes build information for rehashkv binaries.
//
// Values are injected via ldflags and fall back to the module's embedded
// VCS metadata:
//
//	go build -ldflags "-X github.com/yndnr/rehashkv/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
