// Package gazelib is the composition root of the gaze data toolkit.
//
// Recordings are held in the common container (gazelib/common/v1): named
// timelines of microsecond times, value streams bound to those timelines,
// tagged events over time ranges and free form environment metadata. The
// container validates itself against the embedded JSON schema, slices by
// time, index or tag, and round trips through JSON and YAML files.
//
// Packages:
//
//   - pkg/core: the container, its slicing engine and event iterators.
//   - pkg/adapters/fs: file formats, CSV export and the dataset store.
//   - pkg/models/saccade: single saccade detection.
//   - pkg/convert/tobii: conversion of Tobii gaze data.
//
// Usage:
//
//	c, err := gazelib.Open("recording.json")
//	if err != nil {
//		return err
//	}
//	trial, err := c.SliceByTag("icl/experiment/reaction/trial", 0)
//
//	res, err := saccade.Fit(trial)
package gazelib
