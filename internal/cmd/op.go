// Package cmd defines the opcodes carried by the command ring and the
// little-endian payload codec shared by the client and the render goroutine.
//
// Every payload starts with a uint32 sequence token. Asynchronous commands
// carry 0; synchronous ones carry the token the client waits for on the
// return ring.
package cmd

import "fmt"

// Op identifies a command record.
type Op uint32

const (
	OpNone Op = iota

	OpContextFinish                   // seq
	OpContextDestroy                  // seq
	OpContextBindRootScript           // script
	OpContextBindProgramFragment      // program
	OpContextBindProgramFragmentStore // program
	OpContextBindProgramVertex        // program
	OpAssignName                      // object, name
	OpRemoveName                      // object
	OpObjDestroy                      // object

	OpElementBegin      // no args
	OpElementAdd        // kind u8, type u8, normalized bool, bits u32, name
	OpElementPredefined // predefined u8
	OpElementCreate     // seq

	OpTypeBegin  // element
	OpTypeAdd    // dimension u8, value u32
	OpTypeCreate // seq

	OpAllocationCreateTyped          // seq, type, usage u32
	OpAllocationData1D               // alloc, lod, face, offset, count, bytes
	OpAllocationData2D               // alloc, lod, face, xoff, yoff, w, h, bytes
	OpAllocationRead1D               // seq, alloc, lod, face, offset, count
	OpAllocationRead2D               // seq, alloc, lod, face, xoff, yoff, w, h
	OpAllocationCopy1D               // dst, dstLod, dstFace, dstOff, count, src, srcLod, srcFace, srcOff
	OpAllocationCopy2D               // dst, dstLod, dstFace, dx, dy, w, h, src, srcLod, srcFace, sx, sy
	OpAllocationResize1D             // alloc, x
	OpAllocationResize2D             // alloc, x, y
	OpAllocationGetType              // seq, alloc
	OpAllocationUploadToTexture      // alloc, baseMip
	OpAllocationUploadToBufferObject // alloc
	OpAllocationGenerateMipmaps      // alloc
	OpAllocationSyncAll              // alloc, usage
	OpAllocationIOSend               // alloc
	OpAllocationIOReceive            // alloc

	OpAdapter1DCreate // seq, parent, lod, face, y
	OpAdapter2DCreate // seq, parent, lod, face, z

	OpSamplerCreate // seq, min, mag, wrapS, wrapT

	OpProgramVertexCreate        // seq, projection bool
	OpProgramFragmentCreate      // seq, slots u32
	OpProgramFragmentBindTexture // program, slot, alloc
	OpProgramFragmentBindSampler // program, slot, sampler
	OpProgramStoreCreate         // seq, depthFunc u32, depthWrite bool, blend bool

	OpScriptCBegin          // no args
	OpScriptSetClearColor   // r, g, b, a f32
	OpScriptSetClearDepth   // depth f32
	OpScriptSetClearStencil // stencil u32
	OpScriptSetRoot         // bool
	OpScriptSetOrtho        // bool
	OpScriptAddType         // slot, type
	OpScriptDefineInt       // name, i32
	OpScriptDefineFloat     // name, f32
	OpScriptCAppendText     // text chunk
	OpScriptCCreate         // seq
	OpScriptBindAllocation  // script, alloc, slot

	OpContextUpdateSurface // seq; the surface is staged out of band

	OpCount
)

type opInfo struct {
	name    string
	mutates bool // processing it may change what the next frame shows
	sync    bool // the producer waits for a return record
}

var ops = [OpCount]opInfo{
	OpNone:                            {name: "None"},
	OpContextFinish:                   {name: "ContextFinish", sync: true},
	OpContextDestroy:                  {name: "ContextDestroy"},
	OpContextBindRootScript:           {name: "ContextBindRootScript", mutates: true},
	OpContextBindProgramFragment:      {name: "ContextBindProgramFragment", mutates: true},
	OpContextBindProgramFragmentStore: {name: "ContextBindProgramFragmentStore", mutates: true},
	OpContextBindProgramVertex:        {name: "ContextBindProgramVertex", mutates: true},
	OpAssignName:                      {name: "AssignName", mutates: true},
	OpRemoveName:                      {name: "RemoveName", mutates: true},
	OpObjDestroy:                      {name: "ObjDestroy", mutates: true},
	OpElementBegin:                    {name: "ElementBegin", mutates: true},
	OpElementAdd:                      {name: "ElementAdd", mutates: true},
	OpElementPredefined:               {name: "ElementPredefined", mutates: true},
	OpElementCreate:                   {name: "ElementCreate", mutates: true, sync: true},
	OpTypeBegin:                       {name: "TypeBegin", mutates: true},
	OpTypeAdd:                         {name: "TypeAdd", mutates: true},
	OpTypeCreate:                      {name: "TypeCreate", mutates: true, sync: true},
	OpAllocationCreateTyped:           {name: "AllocationCreateTyped", mutates: true, sync: true},
	OpAllocationData1D:                {name: "AllocationData1D", mutates: true},
	OpAllocationData2D:                {name: "AllocationData2D", mutates: true},
	OpAllocationRead1D:                {name: "AllocationRead1D", sync: true},
	OpAllocationRead2D:                {name: "AllocationRead2D", sync: true},
	OpAllocationCopy1D:                {name: "AllocationCopy1D", mutates: true},
	OpAllocationCopy2D:                {name: "AllocationCopy2D", mutates: true},
	OpAllocationResize1D:              {name: "AllocationResize1D", mutates: true},
	OpAllocationResize2D:              {name: "AllocationResize2D", mutates: true},
	OpAllocationGetType:               {name: "AllocationGetType", sync: true},
	OpAllocationUploadToTexture:       {name: "AllocationUploadToTexture", mutates: true},
	OpAllocationUploadToBufferObject:  {name: "AllocationUploadToBufferObject", mutates: true},
	OpAllocationGenerateMipmaps:       {name: "AllocationGenerateMipmaps", mutates: true},
	OpAllocationSyncAll:               {name: "AllocationSyncAll", mutates: true},
	OpAllocationIOSend:                {name: "AllocationIOSend", mutates: true},
	OpAllocationIOReceive:             {name: "AllocationIOReceive", mutates: true},
	OpAdapter1DCreate:                 {name: "Adapter1DCreate", mutates: true, sync: true},
	OpAdapter2DCreate:                 {name: "Adapter2DCreate", mutates: true, sync: true},
	OpSamplerCreate:                   {name: "SamplerCreate", mutates: true, sync: true},
	OpProgramVertexCreate:             {name: "ProgramVertexCreate", mutates: true, sync: true},
	OpProgramFragmentCreate:           {name: "ProgramFragmentCreate", mutates: true, sync: true},
	OpProgramFragmentBindTexture:      {name: "ProgramFragmentBindTexture", mutates: true},
	OpProgramFragmentBindSampler:      {name: "ProgramFragmentBindSampler", mutates: true},
	OpProgramStoreCreate:              {name: "ProgramStoreCreate", mutates: true, sync: true},
	OpScriptCBegin:                    {name: "ScriptCBegin", mutates: true},
	OpScriptSetClearColor:             {name: "ScriptSetClearColor", mutates: true},
	OpScriptSetClearDepth:             {name: "ScriptSetClearDepth", mutates: true},
	OpScriptSetClearStencil:           {name: "ScriptSetClearStencil", mutates: true},
	OpScriptSetRoot:                   {name: "ScriptSetRoot", mutates: true},
	OpScriptSetOrtho:                  {name: "ScriptSetOrtho", mutates: true},
	OpScriptAddType:                   {name: "ScriptAddType", mutates: true},
	OpScriptDefineInt:                 {name: "ScriptDefineInt", mutates: true},
	OpScriptDefineFloat:               {name: "ScriptDefineFloat", mutates: true},
	OpScriptCAppendText:               {name: "ScriptCAppendText", mutates: true},
	OpScriptCCreate:                   {name: "ScriptCCreate", mutates: true, sync: true},
	OpScriptBindAllocation:            {name: "ScriptBindAllocation", mutates: true},
	OpContextUpdateSurface:            {name: "ContextUpdateSurface", mutates: true, sync: true},
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool { return o > OpNone && o < OpCount }

// Mutates reports whether applying o may change the next frame.
func (o Op) Mutates() bool { return o.Valid() && ops[o].mutates }

// Sync reports whether the producer waits for a return record.
func (o Op) Sync() bool { return o.Valid() && ops[o].sync }

func (o Op) String() string {
	if o.Valid() || o == OpNone {
		return ops[o].name
	}
	return fmt.Sprintf("Op(%d)", uint32(o))
}
