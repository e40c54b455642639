package invoke

import "fmt"

// Locator is the immutable target descriptor an invocation is addressed
// to. It is opaque to the core: receivers and the surrounding dispatcher
// interpret it, the core only carries it.
type Locator struct {
	// Namespace groups related targets (e.g. a deployment or cluster).
	Namespace string
	// Identity names the specific business object within Namespace.
	Identity string
}

// String renders the locator for logs and trace attributes.
func (l Locator) String() string {
	if l.Namespace == "" {
		return l.Identity
	}
	return fmt.Sprintf("%s/%s", l.Namespace, l.Identity)
}

// MethodDescriptor identifies the method being invoked, independent of any
// particular serialization or wire format.
type MethodDescriptor struct {
	// Name is the method's name as declared on the business interface.
	Name string
	// ParameterTypes names the declared parameter types, in order, for
	// overload resolution on the receiving side.
	ParameterTypes []string
}

// String renders a Java-EJB-client-style signature for logs.
func (m MethodDescriptor) String() string {
	return fmt.Sprintf("%s(%d args)", m.Name, len(m.ParameterTypes))
}
