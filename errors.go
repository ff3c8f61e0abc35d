package chapterforge

import "github.com/chapterforge/chapterforge/internal/types"

// OutOfBoundsError is an alias to types.OutOfBoundsError for backwards
// compatibility. Re-exporting from internal/types to maintain public API.
type OutOfBoundsError = types.OutOfBoundsError

// CorruptedAtomError is an alias to types.CorruptedAtomError for
// backwards compatibility. Re-exporting from internal/types to
// maintain public API.
type CorruptedAtomError = types.CorruptedAtomError

// InvalidInputError is an alias to types.InvalidInputError for
// backwards compatibility. Re-exporting from internal/types to
// maintain public API.
type InvalidInputError = types.InvalidInputError

// OutputError is an alias to types.OutputError for backwards
// compatibility. Re-exporting from internal/types to maintain public API.
type OutputError = types.OutputError

// ReadIncompleteError is an alias to types.ReadIncompleteError for
// backwards compatibility. Re-exporting from internal/types to
// maintain public API.
type ReadIncompleteError = types.ReadIncompleteError

// Warning is an alias to types.Warning for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning
