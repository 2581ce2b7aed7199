// Package artifact holds the persisted model bundle and its durable store.
//
// A Bundle carries the fitted forest, the fitted median imputer and the
// ordered feature list the model was trained on. The three only make sense
// together, so they are written and read as one unit:
//
//	store := artifact.NewStore(paths.ArtifactPath(), logger)
//	if err := store.Save(bundle); err != nil {
//		return err
//	}
//	loaded, err := store.Load()
//
// On disk the bundle is gob encoded, snappy compressed and wrapped in an
// envelope carrying a magic string, a format version and a BLAKE2b-256
// digest of the payload. Saves go to a temporary file that is renamed over
// the target, so readers observe either the old or the new bundle.
package artifact
