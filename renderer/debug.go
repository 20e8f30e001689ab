package renderer

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// Init loads the GL function pointers for the current context. It must be
// called with the context current, before any other function here.
//
// Driver messages of high and medium severity are always logged where the
// context supports debug output. With debug set, every message is logged.
func Init(debug bool) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl.Init: %w", err)
	}
	log.Println("OpenGL version", gl.GoStr(gl.GetString(gl.VERSION)))

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if !debugOutputSupported(major, minor) {
		log.Printf("GL %d.%d has no debug output, driver messages are not logged", major, minor)
		return nil
	}

	gl.Enable(gl.DEBUG_OUTPUT)
	if debug {
		gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	}
	gl.DebugMessageCallback(func(source, gltype, id, severity uint32, length int32, message string, user unsafe.Pointer) {
		if !debugMessageWanted(severity, debug) {
			return
		}
		log.Printf("gl %s(%s): %s; %s", debugSourceName(source), debugSeverityName(severity), debugTypeName(gltype), message)
	}, nil)
	return nil
}

// debugOutputSupported reports whether glDebugMessageCallback is core in
// the given context version.
func debugOutputSupported(major, minor int32) bool {
	return major > 4 || major == 4 && minor >= 3
}

func debugMessageWanted(severity uint32, verbose bool) bool {
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH, gl.DEBUG_SEVERITY_MEDIUM:
		return true
	}
	return verbose
}

func debugSeverityName(severity uint32) string {
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		return "high"
	case gl.DEBUG_SEVERITY_MEDIUM:
		return "medium"
	case gl.DEBUG_SEVERITY_LOW:
		return "low"
	case gl.DEBUG_SEVERITY_NOTIFICATION:
		return "notification"
	}
	return fmt.Sprintf("severity %#x", severity)
}

func debugSourceName(source uint32) string {
	switch source {
	case gl.DEBUG_SOURCE_API:
		return "api"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		return "shaderCompiler"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		return "windowSystem"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		return "thirdParty"
	case gl.DEBUG_SOURCE_APPLICATION:
		return "application"
	}
	return "other"
}

func debugTypeName(gltype uint32) string {
	switch gltype {
	case gl.DEBUG_TYPE_ERROR:
		return "error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		return "deprecatedBehavior"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		return "undefinedBehavior"
	case gl.DEBUG_TYPE_PERFORMANCE:
		return "performance"
	case gl.DEBUG_TYPE_PORTABILITY:
		return "portability"
	}
	return "other"
}
