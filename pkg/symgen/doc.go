// Package symgen implements the data model of a version-aware symbol table:
// blocks of memory holding function and data symbols whose addresses and
// lengths can either be shared by every release of a binary or given per
// release, possibly split across nested subregion files.
//
// Values that may depend on the version are represented by MaybeVersionDep,
// a closed interface implemented by Common (one value for every version) and
// *VersionMap (one value per version). The merge engine reconciles two trees
// layer by layer, preferring the most general representation that does not
// lose information, and MergeSymbols folds loosely specified new symbols
// into the block that contains them.
//
// Trees must be initialized with SymGen.Init after they are built and after
// every structural change, so that ordered containers iterate in declaration
// order.
package symgen
