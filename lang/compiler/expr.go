package compiler

import (
	"fmt"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/vm"
)

var fExprBinops = map[string]vm.FOpcode{
	"+":  vm.FAdd,
	"*":  vm.FMul,
	"/":  vm.FDiv,
	"<":  vm.FLt,
	"<=": vm.FLe,
	">":  vm.FGt,
	">=": vm.FGe,
	"==": vm.FEq,
}

// compileFExpr compiles t into a complete F-VM expression program: arithmetic,
// comparisons, and "[...]" aggregate literals over integers and variables
// (spec.md §4.4). Float, bool, and string literals, and the host-interop
// functors (".", "::", "new"), are rejected here: vm.Machine.fConstCell only
// ever reads integer constants out of the pool (lang/vm/fvm.go), so there is
// no way for this compiler to push any other literal kind into an
// expression, and the minimal parser's operator table has no way to produce
// those functors from surface syntax in the first place.
func compileFExpr(ctx *clauseCtx, pool *vm.ConstantPool, t ast.Term) ([]byte, error) {
	var fa vm.FAssembler
	if err := emitFExpr(ctx, &fa, pool, t); err != nil {
		return nil, err
	}
	fa.Emit(vm.FReturn, 0)
	return fa.Code, nil
}

func emitFExpr(ctx *clauseCtx, fa *vm.FAssembler, pool *vm.ConstantPool, t ast.Term) error {
	switch v := t.(type) {
	case *ast.Int:
		fa.Emit(vm.FConst, uint32(pool.AddInt(v.Value)))
		return nil

	case *ast.Var:
		if v.Anonymous() {
			return fmt.Errorf("anonymous variable not allowed in an expression at %s", v.Pos())
		}
		slot, ok := ctx.slotOf(v.Name)
		if !ok {
			slot = ctx.varSlot(v.Name)
		}
		fa.Emit(vm.FLocal, uint32(slot))
		return nil

	case *ast.Float:
		return fmt.Errorf("float literals are not supported inside expressions at %s", v.Pos())
	case *ast.Bool:
		return fmt.Errorf("boolean literals are not supported inside expressions at %s", v.Pos())
	case *ast.Str:
		return fmt.Errorf("string literals are not supported inside expressions at %s", v.Pos())

	case *ast.Sym:
		if v.Name.Name() == "$array" {
			fa.Emit(vm.FArray, 0)
			return nil
		}
		return fmt.Errorf("atom %q is not a valid expression term at %s", v.Name.Name(), v.Pos())

	case *ast.Call:
		name := v.Functor.Name()
		if name == "-" && len(v.Args) == 1 {
			fa.Emit(vm.FConst, uint32(pool.AddInt(0)))
			if err := emitFExpr(ctx, fa, pool, v.Args[0]); err != nil {
				return err
			}
			fa.Emit(vm.FSub, 0)
			return nil
		}
		if name == "-" && len(v.Args) == 2 {
			return emitFBinary(ctx, fa, pool, vm.FSub, v.Args)
		}
		if name == "\\=" || name == "=" {
			return fmt.Errorf("%q is not a valid expression operator (unification is not an F-VM concept) at %s", name, v.Pos())
		}
		if op, ok := fExprBinops[name]; ok && len(v.Args) == 2 {
			return emitFBinary(ctx, fa, pool, op, v.Args)
		}
		if name == "$array" {
			for _, a := range v.Args {
				if err := emitFExpr(ctx, fa, pool, a); err != nil {
					return err
				}
			}
			fa.Emit(vm.FArray, uint32(len(v.Args)))
			return nil
		}
		return fmt.Errorf("unsupported operator %q inside an expression at %s", name, v.Pos())

	default:
		return fmt.Errorf("unsupported term %T inside an expression", t)
	}
}

func emitFBinary(ctx *clauseCtx, fa *vm.FAssembler, pool *vm.ConstantPool, op vm.FOpcode, args []ast.Term) error {
	if err := emitFExpr(ctx, fa, pool, args[0]); err != nil {
		return err
	}
	if err := emitFExpr(ctx, fa, pool, args[1]); err != nil {
		return err
	}
	fa.Emit(op, 0)
	return nil
}
