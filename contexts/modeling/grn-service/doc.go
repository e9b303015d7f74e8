// Package grnservice manages gene-regulatory-network models inside the
// modeling context: topology capture and validation, and qualitative (CTL)
// verification delegated to an external checker behind a port.
package grnservice
