// Package compiler turns script text into engine programs.
//
// Script text is WGSL with optional pragma lines:
//
//	#pragma stateVertex(flat)
//	#pragma entry(root)
//
// Pragma lines are removed before parsing and handed back to the engine.
// The remaining text, prefixed with the generated preamble, is parsed,
// lowered and optionally validated with naga. The script names a host
// entry point, registered on the Compiler with Register, that runs on the
// render goroutine for each launch. When the module declares GPU stages
// they are compiled to SPIR-V and kept as a shader module for the life of
// the script.
package compiler
