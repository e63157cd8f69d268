// Package domain translates MCP tool calls into narrative service operations.
//
// Inputs and outputs are flat, snake_case DTOs so MCP clients get stable
// schemas independent of the service's internal JSON shapes.
package domain
