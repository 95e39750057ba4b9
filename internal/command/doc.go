// Package command assembles the ikvmc command line.
//
// The assembled invocation has this shape:
//
//	[mono] ikvmc.exe
//	  -nostdlib -target:library
//	  [user-arg]*
//	  -out:<output-dir>/<final-name>.dll
//	  -r:mscorlib.dll -r:System.dll -r:System.Core.dll
//	  [-r:<user-reference>]*
//	  [-r:<dll-dependency>]*
//	  ( <jar>* | -recurse:<scratch-dir>/*.class )
//
// Reference names are resolved against the base library directory by a
// Resolver. Nothing here touches the compiler itself.
package command
