// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package eeg is a dataflow runtime for multi-channel EEG acquisition.
//
// A Driver produces batches of samples from one or more ADC channels and
// hands them to a Bridge, which adopts pool buffers and feeds them into an
// Executor running a topologically ordered graph of Stages. Stages transform
// or sink packets; the control plane can reconfigure the running graph
// without dropping samples or violating buffer-lifetime invariants.
//
// The packet pool (Pool), runtime packet model (RtPacket), pipeline graph
// (PipelineGraph) and executor (Executor) are the load-bearing subsystems.
// Everything else — the mock source, the voltage-conversion stage, the
// websocket-framing sink — is a concrete instance of the Driver and Stage
// contracts.
package eeg

// vim: foldmethod=marker
