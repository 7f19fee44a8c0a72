// debug_script.go - Lua scripting for the machine monitor.
//
// Grounded on the rest of the corpus's use of github.com/yuin/gopher-lua for
// embedded scripting (the interpreter is a pure-Go VM, so it carries no cgo
// dependency into the build): a script gets a small "machine" table exposing
// getreg/setreg/readmem/writemem/step/pc/breakpoint/print, letting a user automate
// register dumps, scripted pokes, or conditional breakpoint sweeps without
// recompiling the monitor.
package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// RunScript executes a Lua script file against cpu, exposing a "machine"
// global table with register/memory/step primitives.
func RunScript(cpu DebuggableCPU, path string) error {
	L := lua.NewState()
	defer L.Close()

	machine := L.NewTable()
	L.SetField(machine, "getreg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v, ok := cpu.GetRegister(name)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetField(machine, "setreg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		val := L.CheckNumber(2)
		cpu.SetRegister(name, uint64(val))
		return 0
	}))
	L.SetField(machine, "readmem", L.NewFunction(func(L *lua.LState) int {
		addr := L.CheckNumber(1)
		data := cpu.ReadMemory(uint64(addr), 1)
		if len(data) == 0 {
			L.Push(lua.LNumber(0))
		} else {
			L.Push(lua.LNumber(data[0]))
		}
		return 1
	}))
	L.SetField(machine, "writemem", L.NewFunction(func(L *lua.LState) int {
		addr := L.CheckNumber(1)
		val := L.CheckNumber(2)
		cpu.WriteMemory(uint64(addr), []byte{byte(val)})
		return 0
	}))
	L.SetField(machine, "step", L.NewFunction(func(L *lua.LState) int {
		n := 1
		if L.GetTop() >= 1 {
			n = int(L.CheckNumber(1))
		}
		for range n {
			cpu.Step()
		}
		return 0
	}))
	L.SetField(machine, "pc", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(cpu.GetPC()))
		return 1
	}))
	L.SetField(machine, "breakpoint", L.NewFunction(func(L *lua.LState) int {
		addr := L.CheckNumber(1)
		cpu.SetBreakpoint(uint64(addr))
		return 0
	}))
	L.SetField(machine, "print", L.NewFunction(func(L *lua.LState) int {
		fmt.Println(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("machine", machine)

	return L.DoFile(path)
}
