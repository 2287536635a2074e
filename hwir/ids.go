// Package hwir implements the connect-and-continue (CAC) intermediate
// representation: the middle-end data model that the lowering passes in
// hwir/pass rewrite and that the rtl package lowers to Verilog text.
//
// The object graph is cyclic (instructions continue to instructions,
// modules own instances of other modules), so ownership is arena-based
// rather than pointer-based: a Context owns Modules in an append-only
// slice keyed by ModuleID, and each Module owns its ModuleInstances and
// Instructions the same way. Deleting a resource or instruction tombstones
// its arena slot instead of compacting the slice, so every other reference
// by id remains valid.
package hwir

// ModuleID identifies a Module within a Context.
type ModuleID int

// InstanceID identifies a ModuleInstance within a Module, or the sentinel
// Self when a Port names one of the owning module's own boundary ports.
type InstanceID int

// InstID identifies an Instruction within a Module.
type InstID int

// Self is the InstanceID used by a Port that names a port declared
// directly on the enclosing Module, as opposed to a port on one of its
// resource instances.
const Self InstanceID = -1

// invalidInst marks a Continuation or reference with no destination yet.
const invalidInst InstID = -1
