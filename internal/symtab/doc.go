// Package symtab exposes the exported functions, constants and global
// variables of a compiled library as a lazily built, memoizing symbol table.
//
// # Descriptor table
//
// A Table is produced ahead of time (see the manifest package) and borrowed
// by a Lib. It lists every exported symbol sorted by name, each with a Kind,
// an optional type index into the table's type realizer and an Address whose
// Go type depends on the kind:
//
//	KindFuncVarArgs, KindFuncNoArgs, KindFuncOneArg   Func
//	KindIntConstant                                   IntReader
//	KindConstant                                      Filler
//	KindVariable                                      unsafe.Pointer
//
// # Resolution
//
// The first Get of a name looks it up in the table, materializes it and
// caches the result: a *Function for callables, an int or *big.Int for
// integer constants, a cty.Value for other constants and a *Variable for
// globals. Later lookups are served from the cache. Failed materializations
// are never cached, so they are retried on the next access.
//
// A *Variable is a live binding to memory, not a snapshot: Get reads the
// variable's current contents through it and Set writes through it.
//
// # Closing
//
// Close detaches the table. Names that were already resolved keep resolving
// from the cache; every other lookup fails with a *ClosedError.
//
// # Concurrency
//
// A Lib is safe for concurrent use. Concurrent first lookups of one name are
// collapsed into a single materialization, so all callers observe the same
// resolved value.
package symtab
