// Package core defines the shared data model of the wire-encoding layer: the
// Content/Part representation of one conversational turn (text, inline binary,
// stored handles, remote file URIs, tool control markers) with its wire JSON
// shapes, NotebookLM resource detection, and the run stream event type decoded
// by the remote transport.
package core
