// Package station hosts the four kitchen stations as MCP servers and
// provides the client side the orchestrator uses to reach them.
//
// Each station (grill, fryer, dessert, plating) serves its tool catalog
// over streamable HTTP at /mcp, with a plain-text identity probe at the
// root path. ClientSet bundles one client per station and routes tool
// calls by station name, which is the contract the pipeline executor
// dispatches through.
package station
