// Package monet provides an embeddable batch classifier for single-particle
// tracking tables.
//
// An [Engine] walks a folder of CSV trajectory tables, labels every track as
// Brownian, FBM or CTRW with a pluggable classifier, and writes a filtered
// copy of each table that keeps only the rows of tracks matching the chosen
// filter. Outputs go to a sibling folder named MoNet_<input folder name>.
//
// # Basic Usage
//
//	cfg := monet.DefaultConfig()
//	cfg.ModelURL = "http://localhost:8501"
//
//	engine, err := monet.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	run, err := engine.Submit(ctx, "/data/cells", monet.FilterBrownian)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range run.Events() {
//	    fmt.Println(ev.File, ev.Stage)
//	}
//	summary, err := run.Wait()
//
// # Classifiers
//
// Two backends are built in. "http" posts signatures to a model server
// speaking the TensorFlow Serving REST protocol. "msd" labels tracks locally
// from their mean squared displacement curve and needs no model. Use
// [WithClassifier] to plug in any other implementation of [Classifier].
//
// # Concurrency
//
// An Engine runs at most one batch at a time. Submit returns [ErrBusy] while
// a run is active. Files within a run are processed sequentially.
//
// # Event Handling
//
// Per-file progress is delivered on [Run.Events]. Engine state changes are
// delivered to an [EventHandler] registered with [WithEventHandler]. Embed
// [BaseEventHandler] to implement only the callbacks you need.
package monet
