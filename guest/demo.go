package guest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/browser-runtime/browser"
)

// LogoURL is the image source the demo guest assigns.
const LogoURL = "https://raw.githubusercontent.com/RustPython/RustPython/master/logo.png"

// ImageCount is how many images the demo appends.
const ImageCount = 3

// TargetID is the element the demo appends into.
const TargetID = "error"

// Data layout for the demo guest. Strings sit at fixed offsets in the first
// page; the argv scratch word lives past them.
const (
	offDocument       = 0   // "document"
	offGetElementByID = 16  // "getElementById"
	offTargetID       = 32  // "error"
	offCreateElement  = 48  // "createElement"
	offImg            = 64  // "img"
	offSrc            = 80  // "src"
	offAppendChild    = 96  // "appendChild"
	offURL            = 128 // LogoURL
	offArgv           = 256 // one-slot call argument array
)

// BuildImageDemo emits the built-in demo guest: look up the document, find
// the element with id "error", create three img elements with the logo URL
// as src, and append each to it. Everything runs through the browser
// imports; the entry export is "run".
func BuildImageDemo() []byte {
	b := NewBuilder()
	i32 := api.ValueTypeI32
	one := []api.ValueType{i32}

	fnWindow := b.ImportFunc(browser.Namespace, "window", nil, one)
	fnGetProp := b.ImportFunc(browser.Namespace, "get_prop", []api.ValueType{i32, i32, i32}, one)
	fnStringNew := b.ImportFunc(browser.Namespace, "string_new", []api.ValueType{i32, i32}, one)
	fnCall := b.ImportFunc(browser.Namespace, "call", []api.ValueType{i32, i32, i32, i32}, one)
	fnSetProp := b.ImportFunc(browser.Namespace, "set_prop", []api.ValueType{i32, i32, i32, i32}, one)
	fnDrop := b.ImportFunc(browser.Namespace, "drop", one, nil)

	b.AddData(offDocument, []byte("document"))
	b.AddData(offGetElementByID, []byte("getElementById"))
	b.AddData(offTargetID, []byte(TargetID))
	b.AddData(offCreateElement, []byte("createElement"))
	b.AddData(offImg, []byte("img"))
	b.AddData(offSrc, []byte("src"))
	b.AddData(offAppendChild, []byte("appendChild"))
	b.AddData(offURL, []byte(LogoURL))

	// Locals of run().
	const (
		locWindow = iota
		locDocument
		locGetByID
		locTarget
		locCreate
		locAppend
		locImgTag
		locSrcVal
		locImg
		localCount
	)

	undef := int32(browser.HandleUndefined)
	c := NewCode()

	c.Call(fnWindow).LocalSet(locWindow)

	getProp := func(obj uint32, nameOff, nameLen int32, dst uint32) {
		c.LocalGet(obj).I32Const(nameOff).I32Const(nameLen).Call(fnGetProp).LocalSet(dst)
	}
	getProp(locWindow, offDocument, 8, locDocument)
	getProp(locDocument, offGetElementByID, 14, locGetByID)
	getProp(locDocument, offCreateElement, 13, locCreate)
	getProp(locDocument, offAppendChild, 11, locAppend)

	// Interned strings.
	c.I32Const(offTargetID).I32Const(int32(len(TargetID))).Call(fnStringNew).LocalSet(locImgTag)
	// getElementById("error") with this=undefined; reuse the argv slot.
	c.I32Const(offArgv).LocalGet(locImgTag).I32Store(0)
	c.LocalGet(locGetByID).I32Const(undef).I32Const(offArgv).I32Const(1).Call(fnCall).LocalSet(locTarget)
	c.LocalGet(locImgTag).Call(fnDrop)

	c.I32Const(offImg).I32Const(3).Call(fnStringNew).LocalSet(locImgTag)
	c.I32Const(offURL).I32Const(int32(len(LogoURL))).Call(fnStringNew).LocalSet(locSrcVal)

	for i := 0; i < ImageCount; i++ {
		// img = createElement("img")
		c.I32Const(offArgv).LocalGet(locImgTag).I32Store(0)
		c.LocalGet(locCreate).I32Const(undef).I32Const(offArgv).I32Const(1).Call(fnCall).LocalSet(locImg)
		// img.src = url
		c.LocalGet(locImg).I32Const(offSrc).I32Const(3).LocalGet(locSrcVal).Call(fnSetProp).Drop()
		// appendChild.call(this=target, img); retire the returned handle
		c.I32Const(offArgv).LocalGet(locImg).I32Store(0)
		c.LocalGet(locAppend).LocalGet(locTarget).I32Const(offArgv).I32Const(1).Call(fnCall).Call(fnDrop)
	}

	locals := make([]api.ValueType, localCount)
	for i := range locals {
		locals[i] = i32
	}
	b.ExportFunc("run", nil, nil, locals, c.Bytes())

	return b.Build()
}
