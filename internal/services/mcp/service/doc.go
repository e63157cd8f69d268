// Package service wires MCP transports to the narrative tool handlers.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates
// business meaning to the domain handlers.
package service
