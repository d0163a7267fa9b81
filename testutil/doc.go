// Package testutil provides fakes and helpers shared by package tests.
//
// Fake backends stand in for the inference sidecars:
//
//	b := testutil.NewBackend(transcription.KindFasterWhisper)
//	b.Script(result1, result2)
//	backend := transcription.Serialize(b, 0)
//
// Components started through T are stopped when the test ends:
//
//	testutil.T(t).Setup(engineComponent)
package testutil
