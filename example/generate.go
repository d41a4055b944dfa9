//go:build generate

package main

import (
	_ "github.com/zeenix/zlink/cmd/varlinkgen"
)

//go:generate go run github.com/zeenix/zlink/cmd/varlinkgen -i exampleapi/org.example.varlink -package exampleapi -o exampleapi/org.example.gen.go
