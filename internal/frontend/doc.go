// Package frontend extracts C++ declarations from source files using
// tree-sitter.
//
// The front end is deliberately syntactic: it sees one file at a time, does
// not run the preprocessor and does not resolve overloads or types. Each
// declaration becomes a metadata.Fact whose identity is derived from a
// USR-like string built from the enclosing scopes and, for functions, the
// normalized parameter types:
//
//	c:@N@geo@S@Circle              class geo::Circle
//	c:@N@geo@S@Circle@F@area#      geo::Circle::area()
//	c:@N@geo@F@scale#double,int    geo::scale(double, int)
//
// The same declaration seen in a header and in a source file therefore maps
// to the same metadata.SymbolID and is merged by the corpus.
//
// # Basic Usage
//
//	p := frontend.New()
//	defer p.Close()
//
//	result, err := p.ParseFile(ctx, "src/geo/circle.h")
//	if err != nil {
//	    return err
//	}
//	for i := range result.Facts {
//	    if err := c.MergeFact(&result.Facts[i]); err != nil {
//	        return err
//	    }
//	}
//
// A Parser is not safe for concurrent use; create one per goroutine.
//
// # Qualified Names
//
// A qualifier the file never declares, as in "void ns::f(int) {}", is read
// as a class. Functions and variables declared this way also carry the
// namespace reading in Fact.Alt. Merge the results of many files through a
// corpus.Batch so the choice is made once every file is in.
//
// # Recognized Declarations
//
//   - Namespaces, including nested (a::b), anonymous and inline ones
//   - Classes, structs and unions with bases, access sections and final
//   - Member functions with their specifiers, fields and static data members
//   - Free functions, enumerations, typedefs and alias declarations
//   - Namespace-scope variables
//   - Template parameters and explicit or partial specializations
//   - Friend functions
//   - Out-of-line member definitions (void Circle::draw() {})
//
// Syntax errors are reported in ParseResult.Errors; declarations outside the
// damaged region are still extracted.
package frontend
