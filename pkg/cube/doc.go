// Package cube provides types, interfaces, and helpers for working with
// CUBE, the ChRIS backend API.
//
// # Overview
//
// The cube package defines the domain types (e.g., Plugin, Feed,
// PluginInstance, FileResource), the lazy paginated Search engine, the
// Linked handle which pairs a resource with the requester and capability
// needed to act on it, and the bounded-concurrency transfer Executor with
// its progress aggregation. A concrete client implementation is provided by
// the cubeclient package, which wires configuration, transport,
// authentication, and collection link discovery. Most consumers should
// import cubeclient to construct a client and then interact with the
// interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fnndsc/cube-client/pkg/cube"
//	  "github.com/fnndsc/cube-client/pkg/cubeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := cubeclient.New(ctx, &cube.Config{Address: "https://cube.example.org/api/v1/"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Stream every matching plugin, one page at a time
//	  it := cli.Plugins().Name("dcm2niix").Search().Stream(ctx)
//	  for it.HasNext() {
//	    plugin, err := it.Next()
//	    if err != nil { break }
//	    log.Println(plugin.Name)
//	  }
//	}
//
// # Access capabilities
//
// Every Search and Linked value carries an Access level, ReadOnly or
// ReadWrite, fixed when the client is constructed. Mutating operations on
// read-only handles fail with ErrReadOnlyAccess before any request is
// made. AsReadOnly downgrades a handle; there is no upgrade.
package cube
