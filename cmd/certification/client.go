package main

import (
	"fmt"
	"log"
	"net"

	"github.com/zeenix/zlink"
	"github.com/zeenix/zlink/example/exampleapi"
	"github.com/zeenix/zlink/transport/streamsock"
)

func client(protocol, socket string) {
	log.Printf("Connecting to %s://%s\n", protocol, socket)
	conn, err := net.Dial(protocol, socket)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	proxy := zlink.NewProxy(streamsock.New(conn), zlink.WithCapacityClass(zlink.Capacity16KiB))

	// Scenario 1: Ping.
	if err := proxy.Call(exampleapi.InterfaceName+".Ping", nil, nil, nil); err != nil {
		log.Fatal("Ping: ", err)
	}
	log.Println("Ping: ok")

	// Scenario 2: typed error.
	var divOut struct {
		Result int `json:"result"`
	}
	var divErr exampleapi.DivisionByZeroError
	err = proxy.Call(exampleapi.InterfaceName+".Divide", map[string]int{"a": 1, "b": 0}, &divOut, &divErr)
	if err == nil {
		log.Fatal("Divide by zero should have failed")
	}
	if _, ok := err.(*exampleapi.DivisionByZeroError); !ok {
		log.Fatalf("Divide by zero returned wrong error type: %#v", err)
	}
	log.Println("Divide by zero: got DivisionByZero as expected")

	// Scenario 3: streaming reply.
	stream, err := proxy.CallMore(exampleapi.InterfaceName+".Count", map[string]int{"n": 3})
	if err != nil {
		log.Fatal("Count: ", err)
	}
	var counted []int
	for {
		var out struct {
			I int `json:"i"`
		}
		more, err := stream.Next(&out, nil)
		if err != nil {
			log.Fatal("Count.Next: ", err)
		}
		if !more {
			// The terminator frame carries no parameters.
			break
		}
		counted = append(counted, out.I)
	}
	log.Println("Count: got", counted)

	// Scenario 4: pipeline.
	chain := proxy.Chain().
		Add(exampleapi.InterfaceName+".Add", map[string]int{"a": 1, "b": 2}).
		Add(exampleapi.InterfaceName+".Add", map[string]int{"a": 3, "b": 4}).
		AddOneway(exampleapi.InterfaceName+".Log", map[string]string{"message": "hi"}).
		Add(exampleapi.InterfaceName+".Add", map[string]int{"a": 5, "b": 6})

	replies, err := chain.Send()
	if err != nil {
		log.Fatal("pipeline send: ", err)
	}
	var sums []int
	for {
		var out struct {
			Result int `json:"result"`
		}
		ok, err := replies.Next(&out, nil)
		if err != nil {
			log.Fatal("pipeline reply: ", err)
		}
		if !ok {
			break
		}
		sums = append(sums, out.Result)
	}
	log.Println("Pipeline sums:", sums, "(want [3 7 11])")

	// Scenario 6: introspection.
	var info struct {
		Vendor     string   `json:"vendor"`
		Interfaces []string `json:"interfaces"`
	}
	if err := proxy.Call("org.varlink.service.GetInfo", nil, &info, nil); err != nil {
		log.Fatal("GetInfo: ", err)
	}
	log.Println("GetInfo interfaces:", info.Interfaces)

	var desc struct {
		Description string `json:"description"`
	}
	if err := proxy.Call("org.varlink.service.GetInterfaceDescription",
		map[string]string{"interface": "org.varlink.service"}, &desc, nil); err != nil {
		log.Fatal("GetInterfaceDescription: ", err)
	}
	fmt.Println("org.varlink.service description:")
	fmt.Println(desc.Description)

	log.Println("certification passed")
}
