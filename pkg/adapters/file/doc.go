// Package file reads models and stub templates from disk and stores recorded
// sequences as JSON files.
//
// Model files are YAML or JSON documents:
//
//	name: login
//	data:
//	  validLogin: "false"
//	vertices:
//	  - label: v_ClientNotRunning
//	  - label: v_LoginPrompted
//	    requirements: [REQ-1]
//	edges:
//	  - {from: Start, to: v_ClientNotRunning, label: e_Init}
//	  - {from: v_ClientNotRunning, to: v_LoginPrompted, label: "e_StartClient[validLogin=='false']"}
//
// The Start vertex is implicit. Edges refer to vertices by id, which defaults to the label.
package file
